package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/classdex/internal/db"
	"github.com/kailas-cloud/classdex/internal/domain/search/query"
)

const sectionKey = "classdex:1263:section:10234"

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	tests := []struct {
		s, sub string
		want   bool
	}{
		{"Index Already Exists", "index already exists", true},
		{"UNKNOWN INDEX NAME", "unknown index name", true},
		{"hello world", "world", true},
		{"short", "longer than input", false},
		{"exact", "exact", true},
		{"", "", true},
		{"notempty", "", true},
	}
	for _, tc := range tests {
		got := containsIgnoreCase(tc.s, tc.sub)
		if got != tc.want {
			t.Errorf("containsIgnoreCase(%q, %q) = %v, want %v", tc.s, tc.sub, got, tc.want)
		}
	}
}

// --- hash.go tests ---

func TestHSetMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(2)),
			mock.Result(mock.RedisInt64(2)),
		})

	s := NewStoreForTest(c)
	err := s.HSetMulti(context.Background(), []db.HashSetItem{
		{Key: "classdex:1263:section:1", Fields: map[string]string{"subject": "CS"}},
		{Key: "classdex:1263:section:2", Fields: map[string]string{"subject": "MATH"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSetMulti_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{mock.ErrorResult(context.DeadlineExceeded)})

	s := NewStoreForTest(c)
	err := s.HSetMulti(context.Background(), []db.HashSetItem{
		{Key: sectionKey, Fields: map[string]string{"title": "Data Structures"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestHSetMulti_Empty(t *testing.T) {
	s := NewStoreForTest(nil)
	if err := s.HSetMulti(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHGetAllMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"class_number": mock.RedisString("1"),
			})),
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"class_number": mock.RedisString("2"),
			})),
		})

	s := NewStoreForTest(c)
	results, err := s.HGetAllMulti(context.Background(), []string{"classdex:1263:section:1", "classdex:1263:section:2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0]["class_number"] != "1" || results[1]["class_number"] != "2" {
		t.Errorf("unexpected results: %v", results)
	}
}

func TestHGetAllMulti_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{mock.ErrorResult(context.DeadlineExceeded)})

	s := NewStoreForTest(c)
	_, err := s.HGetAllMulti(context.Background(), []string{sectionKey})
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestHGetAllMulti_Empty(t *testing.T) {
	s := NewStoreForTest(nil) // client not called
	results, err := s.HGetAllMulti(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil, got %v", results)
	}
}

// --- index.go tests ---

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE" && cmd[1] == "classdex:1263:idx"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	idx := db.NewIndex("classdex:1263:idx").
		Prefix("classdex:1263:section:").
		Tag("subject").
		TextWeighted("title", 3).Sortable().
		MustBuild()
	if err := s.CreateIndex(context.Background(), idx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	idx := &db.IndexDefinition{
		Name:   "classdex:1263:idx",
		Fields: []db.IndexField{{Name: "subject", Type: db.IndexFieldTag}},
	}
	err := s.CreateIndex(context.Background(), idx)
	if !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestCreateIndex_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	idx := &db.IndexDefinition{
		Name:   "classdex:1263:idx",
		Fields: []db.IndexField{{Name: "subject", Type: db.IndexFieldTag}},
	}
	err := s.CreateIndex(context.Background(), idx)
	if !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestDropIndex_DeleteDocs(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "classdex:1263:idx", "DD")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.DropIndex(context.Background(), "classdex:1263:idx", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDropIndex_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.DROPINDEX", "classdex:1263:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	err := s.DropIndex(context.Background(), "classdex:1263:idx", false)
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestIndexExists(t *testing.T) {
	tests := []struct {
		name  string
		reply rueidis.RedisMessage
		want  bool
	}{
		{"present", mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("classdex:1263:idx")), true},
		{"unknown", mock.RedisError("Unknown Index name"), false},
		{"no such index", mock.RedisError("classdex:1263:idx: no such index"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)

			c.EXPECT().
				Do(gomock.Any(), mock.Match("FT.INFO", "classdex:1263:idx")).
				Return(mock.Result(tc.reply))

			s := NewStoreForTest(c)
			exists, err := s.IndexExists(context.Background(), "classdex:1263:idx")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if exists != tc.want {
				t.Errorf("exists = %v, want %v", exists, tc.want)
			}
		})
	}
}

func TestBuildCreateArgs(t *testing.T) {
	_, err := buildCreateArgs(&db.IndexDefinition{Name: "", Fields: []db.IndexField{{Name: "f", Type: db.IndexFieldTag}}})
	if err == nil {
		t.Error("expected error for empty name")
	}

	_, err = buildCreateArgs(&db.IndexDefinition{Name: "test"})
	if err == nil {
		t.Error("expected error for empty fields")
	}

	args, err := buildCreateArgs(db.NewIndex("classdex:1263:idx").
		Prefix("classdex:1263:section:").
		TagWithOpts("meeting_days", "|", false).
		Numeric("start_minute").
		MustBuild())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"classdex:1263:idx", "ON", "HASH", "PREFIX", "1", "classdex:1263:section:",
		"SCHEMA", "meeting_days", "TAG", "SEPARATOR", "|", "start_minute", "NUMERIC",
	}
	assertArgs(t, args, want)
}

func TestBuildFieldArgs(t *testing.T) {
	tests := []struct {
		name  string
		field db.IndexField
		want  []string
	}{
		{"tag", db.IndexField{Name: "subject", Type: db.IndexFieldTag}, []string{"subject", "TAG"}},
		{"numeric sortable", db.IndexField{Name: "enrollment_total", Type: db.IndexFieldNumeric, Sortable: true},
			[]string{"enrollment_total", "NUMERIC", "SORTABLE"}},
		{"text weighted", db.IndexField{Name: "title", Type: db.IndexFieldText, TextWeight: 3},
			[]string{"title", "TEXT", "WEIGHT", "3"}},
		{"tag case sensitive", db.IndexField{Name: "course_id", Type: db.IndexFieldTag, TagCaseSensitive: true},
			[]string{"course_id", "TAG", "CASESENSITIVE"}},
		{"alias", db.IndexField{Name: "subj", Alias: "subject", Type: db.IndexFieldTag},
			[]string{"subj", "AS", "subject", "TAG"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args, err := buildFieldArgs(&tc.field)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertArgs(t, args, tc.want)
		})
	}

	if _, err := buildFieldArgs(&db.IndexField{Name: "", Type: db.IndexFieldTag}); err == nil {
		t.Error("expected error for empty field name")
	}
	if _, err := buildFieldArgs(&db.IndexField{Name: "f", Type: db.IndexFieldType(99)}); err == nil {
		t.Error("expected error for unknown type")
	}
}

func assertArgs(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("args = %v, want %v", got, want)
		}
	}
}

// --- search.go tests ---

func TestSearch_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	subject, _ := query.Term("subject", "CS")
	var sent []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			sent = cmd
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(12),
			mock.RedisString("classdex:1263:section:1"),
			mock.RedisArray(mock.RedisString("class_number"), mock.RedisString("1")),
			mock.RedisString("classdex:1263:section:2"),
			mock.RedisArray(mock.RedisString("class_number"), mock.RedisString("2")),
		)))

	s := NewStoreForTest(c)
	result, err := s.Search(context.Background(), &db.SearchQuery{
		Index:    "classdex:1263:idx",
		Query:    subject,
		Offset:   10,
		Limit:    2,
		SortBy:   "catalog_number",
		SortDesc: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 12 {
		t.Errorf("total = %d, want 12", result.Total)
	}
	if len(result.Entries) != 2 || result.Entries[1].Fields["class_number"] != "2" {
		t.Fatalf("unexpected entries: %+v", result.Entries)
	}

	want := []string{
		"FT.SEARCH", "classdex:1263:idx", "@subject:{CS}",
		"SORTBY", "catalog_number", "DESC",
		"LIMIT", "10", "2", "DIALECT", "2",
	}
	assertArgs(t, sent, want)
}

func TestSearch_MatchAllZeroNode(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[2] == "*"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	result, err := s.Search(context.Background(), &db.SearchQuery{Index: "classdex:1263:idx", Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 0 || len(result.Entries) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestSearch_Validation(t *testing.T) {
	s := NewStoreForTest(nil)
	ctx := context.Background()

	if _, err := s.Search(ctx, &db.SearchQuery{}); err == nil {
		t.Error("expected error for missing index")
	}
	if _, err := s.Search(ctx, &db.SearchQuery{Index: "idx", Offset: -1}); err == nil {
		t.Error("expected error for negative offset")
	}
	if _, err := s.Search(ctx, &db.SearchQuery{Index: "idx", SortBy: "title DESC"}); err == nil {
		t.Error("expected error for invalid sort field")
	}
}

func TestSearch_IndexMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisError("classdex:1259:idx: no such index")))

	s := NewStoreForTest(c)
	_, err := s.Search(context.Background(), &db.SearchQuery{Index: "classdex:1259:idx", Limit: 10})
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestSearch_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.Search(context.Background(), &db.SearchQuery{Index: "classdex:1263:idx", Limit: 10})
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestTerms_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var sent []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			sent = cmd
			return cmd[0] == "FT.AGGREGATE"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(3),
			mock.RedisArray(
				mock.RedisString("subject"), mock.RedisString("CS"),
				mock.RedisString("count"), mock.RedisString("41"),
			),
			mock.RedisArray(
				mock.RedisString("subject"), mock.RedisString("MATH"),
				mock.RedisString("count"), mock.RedisString("17"),
			),
			mock.RedisArray(
				mock.RedisString("subject"), mock.RedisNil(),
				mock.RedisString("count"), mock.RedisString("2"),
			),
		)))

	s := NewStoreForTest(c)
	buckets, err := s.Terms(context.Background(), &db.TermsQuery{
		Index: "classdex:1263:idx",
		Field: "subject",
		Size:  500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("buckets = %+v, want 2", buckets)
	}
	if buckets[0] != (db.Bucket{Value: "CS", Count: 41}) || buckets[1] != (db.Bucket{Value: "MATH", Count: 17}) {
		t.Errorf("unexpected buckets: %+v", buckets)
	}

	want := []string{
		"FT.AGGREGATE", "classdex:1263:idx", "*",
		"GROUPBY", "1", "@subject",
		"REDUCE", "COUNT", "0", "AS", "count",
		"SORTBY", "2", "@count", "DESC",
		"LIMIT", "0", "500",
		"DIALECT", "2",
	}
	assertArgs(t, sent, want)
}

func TestTerms_Validation(t *testing.T) {
	s := NewStoreForTest(nil)
	ctx := context.Background()

	if _, err := s.Terms(ctx, &db.TermsQuery{Field: "subject", Size: 1}); err == nil {
		t.Error("expected error for missing index")
	}
	if _, err := s.Terms(ctx, &db.TermsQuery{Index: "idx", Field: "bad field", Size: 1}); err == nil {
		t.Error("expected error for invalid field")
	}
	if _, err := s.Terms(ctx, &db.TermsQuery{Index: "idx", Field: "subject"}); err == nil {
		t.Error("expected error for zero size")
	}
}

// --- helpers ---

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
