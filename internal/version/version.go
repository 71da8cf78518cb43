package version

const Number = "0.2.0"

func String() string {
	return Number
}
