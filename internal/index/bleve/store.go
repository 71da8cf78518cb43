package bleve

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	bsearch "github.com/blevesearch/bleve/v2/search"
	bquery "github.com/blevesearch/bleve/v2/search/query"

	"remindex/internal/model"
)

// Field boosts: title outranks notes, notes outrank the list name. These
// weights are fixed and shared by build and query time.
const (
	boostTitle = 3.0
	boostNotes = 2.0
	boostList  = 1.0
)

// CorruptError reports a fuzzy index that exists on disk but cannot be
// opened. Callers treat it the same as a missing index.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("fuzzy store corrupt at %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

type Store struct {
	path string
	idx  bleve.Index
}

// Exists reports whether a fuzzy index has been created at path.
func Exists(path string) bool {
	_, err := os.Stat(filepath.Join(path, "index_meta.json"))
	return err == nil
}

func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}

	var idx bleve.Index
	if Exists(path) {
		var err error
		idx, err = bleve.Open(path)
		if err != nil {
			return nil, &CorruptError{Path: path, Err: err}
		}
	} else {
		var err error
		idx, err = bleve.New(path, buildMapping())
		if err != nil {
			return nil, err
		}
	}

	return &Store{path: path, idx: idx}, nil
}

func (s *Store) Close() error {
	if s == nil || s.idx == nil {
		return nil
	}
	return s.idx.Close()
}

// Remove deletes the index directory. Used by full rebuilds.
func Remove(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is required")
	}
	return os.RemoveAll(path)
}

// IndexBatch adds one batch of records to the index. Title, notes, and list
// name are tokenized; everything else rides along as stored payload.
func (s *Store) IndexBatch(records []model.Record) error {
	if s == nil || s.idx == nil {
		return fmt.Errorf("store is not open")
	}
	if len(records) == 0 {
		return nil
	}

	batch := s.idx.NewBatch()
	for _, r := range records {
		doc := map[string]any{
			"id":         r.ID,
			"title":      r.Title,
			"notes":      r.Notes,
			"list_name":  r.ListName,
			"list_id":    r.ListID,
			"completed":  r.Completed,
			"flagged":    r.Flagged,
			"priority":   r.Priority,
			"created_at": r.CreatedAt,
		}
		if r.DueAt != nil {
			doc["due_at"] = *r.DueAt
		}
		if r.CompletedAt != nil {
			doc["completed_at"] = *r.CompletedAt
		}
		if err := batch.Index(docID(r.ID), doc); err != nil {
			return err
		}
	}
	return s.idx.Batch(batch)
}

// Search ranks records against text with typo tolerance: per token, a
// disjunction of an analyzed match query (edit distance scaled to token
// length) and a prefix query, across the three tokenized fields.
func (s *Store) Search(text string, limit int) ([]model.SearchHit, error) {
	if s == nil || s.idx == nil {
		return nil, fmt.Errorf("store is not open")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	req := bleve.NewSearchRequestOptions(buildQuery(text), limit, 0, false)
	req.Fields = []string{
		"id", "title", "notes", "list_name", "list_id",
		"completed", "flagged", "priority",
		"created_at", "due_at", "completed_at",
	}
	req.IncludeLocations = true

	res, err := s.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]model.SearchHit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		out = append(out, model.SearchHit{
			Record:       recordFromFields(hit.ID, hit.Fields),
			Score:        hit.Score,
			MatchedTerms: matchedTerms(hit.Locations),
		})
	}
	return out, nil
}

func (s *Store) Count() (int, error) {
	if s == nil || s.idx == nil {
		return 0, fmt.Errorf("store is not open")
	}
	n, err := s.idx.DocCount()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func buildMapping() mapping.IndexMapping {
	idxMapping := bleve.NewIndexMapping()
	idxMapping.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()
	doc.Dynamic = false

	text := bleve.NewTextFieldMapping()
	text.Analyzer = en.AnalyzerName
	text.Store = true
	text.Index = true

	num := bleve.NewNumericFieldMapping()
	num.Store = true
	num.Index = false

	boolean := bleve.NewBooleanFieldMapping()
	boolean.Store = true
	boolean.Index = false

	doc.AddFieldMappingsAt("title", text)
	doc.AddFieldMappingsAt("notes", text)
	doc.AddFieldMappingsAt("list_name", text)
	doc.AddFieldMappingsAt("id", num)
	doc.AddFieldMappingsAt("list_id", num)
	doc.AddFieldMappingsAt("priority", num)
	doc.AddFieldMappingsAt("created_at", num)
	doc.AddFieldMappingsAt("due_at", num)
	doc.AddFieldMappingsAt("completed_at", num)
	doc.AddFieldMappingsAt("completed", boolean)
	doc.AddFieldMappingsAt("flagged", boolean)

	idxMapping.DefaultMapping = doc
	return idxMapping
}

var searchFields = []struct {
	name  string
	boost float64
}{
	{"title", boostTitle},
	{"notes", boostNotes},
	{"list_name", boostList},
}

func buildQuery(text string) bquery.Query {
	tokens := strings.Fields(strings.ToLower(text))
	perToken := make([]bquery.Query, 0, len(tokens))
	for _, tok := range tokens {
		fuzz := fuzziness(tok)
		alts := make([]bquery.Query, 0, len(searchFields)*2)
		for _, f := range searchFields {
			m := bleve.NewMatchQuery(tok)
			m.SetField(f.name)
			m.SetFuzziness(fuzz)
			m.SetBoost(f.boost)
			alts = append(alts, m)

			p := bleve.NewPrefixQuery(tok)
			p.SetField(f.name)
			p.SetBoost(f.boost * 0.5)
			alts = append(alts, p)
		}
		perToken = append(perToken, bleve.NewDisjunctionQuery(alts...))
	}
	if len(perToken) == 1 {
		return perToken[0]
	}
	return bleve.NewDisjunctionQuery(perToken...)
}

// fuzziness scales edit-distance tolerance to token length so short tokens
// stay exact.
func fuzziness(token string) int {
	switch n := utf8.RuneCountInString(token); {
	case n <= 2:
		return 0
	case n <= 4:
		return 1
	default:
		return 2
	}
}

func matchedTerms(locations bsearch.FieldTermLocationMap) []string {
	if len(locations) == 0 {
		return nil
	}
	set := map[string]struct{}{}
	for _, terms := range locations {
		for term := range terms {
			set[term] = struct{}{}
		}
	}
	return sortedTerms(set)
}

func recordFromFields(id string, fields map[string]any) model.Record {
	var r model.Record
	if v, err := strconv.ParseInt(id, 10, 64); err == nil {
		r.ID = v
	}
	if v, ok := fields["title"].(string); ok {
		r.Title = v
	}
	if v, ok := fields["notes"].(string); ok {
		r.Notes = v
	}
	if v, ok := fields["list_name"].(string); ok {
		r.ListName = v
	}
	if v, ok := toInt64(fields["list_id"]); ok {
		r.ListID = v
	}
	if v, ok := fields["completed"].(bool); ok {
		r.Completed = v
	}
	if v, ok := fields["flagged"].(bool); ok {
		r.Flagged = v
	}
	if v, ok := toInt64(fields["priority"]); ok {
		r.Priority = int(v)
	}
	if v, ok := toInt64(fields["created_at"]); ok {
		r.CreatedAt = v
	}
	if v, ok := toInt64(fields["due_at"]); ok {
		r.DueAt = &v
	}
	if v, ok := toInt64(fields["completed_at"]); ok {
		r.CompletedAt = &v
	}
	return r
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case float32:
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case uint64:
		return int64(t), true
	default:
		return 0, false
	}
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func sortedTerms(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
