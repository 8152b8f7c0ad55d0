// Package tags caches the Gamma tag catalog so tag names resolve to ids
// without a network round trip.
package tags

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/polycache/internal/backfill"
	"github.com/roach88/polycache/internal/client/gamma"
	"github.com/roach88/polycache/internal/querysql"
	"github.com/roach88/polycache/internal/store"
)

const TableTags = "tags"

var Schema = store.Schema{
	Name: TableTags,
	Create: `CREATE TABLE IF NOT EXISTS tags (
		name TEXT NOT NULL,
		id TEXT NOT NULL,
		PRIMARY KEY (id))`,
	Index: `CREATE INDEX IF NOT EXISTS idx_tags_name_id ON tags (name, id)`,
}

const insertTagSQL = `INSERT OR IGNORE INTO tags (name, id) VALUES (?, ?)`

const selectTagsSQL = `SELECT name, id FROM tags`

// id is listed first so it wins when both are given.
var columns = querysql.ColumnMap{
	{Arg: querysql.ArgTagID, Name: "id"},
	{Arg: querysql.ArgTagName, Name: "name"},
}

var readArgs = []querysql.Arg{querysql.ArgTagID, querysql.ArgTagName}

// Casers are stateful, so each call builds its own.
func foldCase(s string) string  { return cases.Fold().String(s) }
func lowerCase(s string) string { return cases.Lower(language.English).String(s) }

// Tag is one row of the tags table. Name is the lower-cased label.
type Tag struct {
	Name string `json:"name" yaml:"name"`
	ID   string `json:"id" yaml:"id"`
}

// Store owns the write path of the tags table.
type Store struct {
	db *store.Store
}

func NewStore(db *store.Store) *Store {
	return &Store{db: db}
}

func (s *Store) InsertTags(ctx context.Context, tags []Tag) (int64, error) {
	rows := make([][]any, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, []any{t.Name, t.ID})
	}
	n, err := s.db.Insert(ctx, insertTagSQL, rows)
	if err != nil {
		return 0, fmt.Errorf("insert tags: %w", err)
	}
	return n, nil
}

// ReadTags returns tags by tag_id, else by tag_name, else all of them,
// ordered by name.
func (s *Store) ReadTags(ctx context.Context, args querysql.Args) ([]Tag, error) {
	query, params := querysql.First(selectTagsSQL, columns, args)
	table, err := s.db.ReadOrRecreate(ctx, Schema, query+" ORDER BY name, id", params)
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}
	out := make([]Tag, 0, table.Len())
	for i := range table.Rows {
		r := table.Row(i)
		out = append(out, Tag{Name: r.String("name"), ID: r.String("id")})
	}
	return out, nil
}

// TagsClient is the slice of the Gamma client the fetcher needs.
type TagsClient interface {
	GetTags(ctx context.Context, params gamma.TagsParams) ([]gamma.Tag, error)
}

// GammaFetcher lists Gamma tags and narrows them to the request.
type GammaFetcher struct {
	Client TagsClient
	Limit  int
}

// Fetch returns the tag whose label or slug matches tag_name ignoring case,
// the tag with id tag_id, or every tag when neither is given.
func (f *GammaFetcher) Fetch(ctx context.Context, args querysql.Args) ([]Tag, error) {
	raw, err := f.Client.GetTags(ctx, gamma.TagsParams{Limit: f.Limit})
	if err != nil {
		return nil, fmt.Errorf("gamma tags: %w", err)
	}

	id := args.Get(querysql.ArgTagID)
	name := foldCase(args.Get(querysql.ArgTagName))
	all := make([]Tag, 0, len(raw))
	for _, t := range raw {
		tag := Tag{Name: lowerCase(t.Label), ID: t.ID}
		switch {
		case id != "":
			if t.ID == id {
				return []Tag{tag}, nil
			}
		case name != "":
			if foldCase(t.Label) == name || foldCase(t.Slug) == name {
				return []Tag{tag}, nil
			}
		default:
			all = append(all, tag)
		}
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("gamma tags: no match: %w", backfill.ErrNoData)
	}
	return all, nil
}

// Query selects tags. ID wins over Name.
type Query struct {
	ID    string
	Name  string
	Force bool
}

// Service answers tag requests through the read-through cache.
type Service struct {
	store *Store
	fetch backfill.FetchFunc[[]Tag]
	orch  *backfill.Orchestrator
}

func NewService(st *Store, fetch backfill.FetchFunc[[]Tag], logger *zap.Logger) *Service {
	return &Service{store: st, fetch: fetch, orch: backfill.New(logger)}
}

// GetTags resolves q against the local catalog, fetching on a miss.
// Names are stored lower-cased, so the lookup name is lower-cased too.
func (s *Service) GetTags(ctx context.Context, q Query) ([]Tag, error) {
	plan := backfill.Plan[Tag, []Tag]{
		Name:      "tags",
		Read:      s.store.ReadTags,
		ReadArgs:  readArgs,
		Fetch:     s.fetch,
		FetchArgs: readArgs,
		Writes: []backfill.Step[[]Tag]{
			backfill.Into(TableTags, func(t []Tag) []Tag { return t }, s.store.InsertTags),
		},
	}
	args := querysql.Args{
		querysql.ArgTagID:   q.ID,
		querysql.ArgTagName: lowerCase(q.Name),
	}
	return backfill.Run(ctx, s.orch, plan, args, q.Force)
}
