package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Workspace is a filesystem docstore: one Markdown file with YAML frontmatter
// per entity, grouped in a directory per collection.
type Workspace struct {
	Root string

	mu  sync.Mutex
	cfg Config
}

type Config struct {
	Schema      int             `json:"schema"`
	Collections []CollectionDef `json:"collections"`
}

type CollectionDef struct {
	Kind Kind   `json:"kind"`
	Dir  string `json:"dir"`
}

var _ Store = (*Workspace)(nil)

// Open opens a workspace rooted at root. It does not create files until Init is called.
func Open(root string) (*Workspace, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("%w: workspace root is required", ErrInvalid)
	}
	ws := &Workspace{Root: ExpandHome(root)}
	if err := ws.loadOrDefaultConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return ws, nil
}

func (w *Workspace) Init() error {
	if err := os.MkdirAll(w.Root, 0o755); err != nil {
		return err
	}
	if err := w.ensureConfig(); err != nil {
		return err
	}
	for _, c := range w.cfg.Collections {
		if err := os.MkdirAll(filepath.Join(w.Root, c.Dir), 0o755); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workspace) Config() Config {
	return w.cfg
}

func defaultConfig() Config {
	cfg := Config{Schema: 1}
	for _, k := range Kinds {
		cfg.Collections = append(cfg.Collections, CollectionDef{Kind: k, Dir: k.Plural()})
	}
	return cfg
}

func (w *Workspace) ensureConfig() error {
	cfgPath := filepath.Join(w.Root, "config.json")
	if _, err := os.Stat(cfgPath); err == nil {
		return w.loadOrDefaultConfig()
	}
	w.cfg = defaultConfig()
	b, _ := json.MarshalIndent(w.cfg, "", "  ")
	return atomicWriteFile(cfgPath, b, 0o644)
}

func (w *Workspace) loadOrDefaultConfig() error {
	cfgPath := filepath.Join(w.Root, "config.json")
	b, err := os.ReadFile(cfgPath)
	if err != nil {
		w.cfg = defaultConfig()
		return err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return fmt.Errorf("%w: config.json: %v", ErrInvalid, err)
	}
	if cfg.Schema == 0 {
		cfg.Schema = 1
	}
	// Fill in any collection the file does not mention.
	for _, def := range defaultConfig().Collections {
		if _, ok := cfg.dirFor(def.Kind); !ok {
			cfg.Collections = append(cfg.Collections, def)
		}
	}
	w.cfg = cfg
	return nil
}

func (c Config) dirFor(kind Kind) (string, bool) {
	for _, def := range c.Collections {
		if def.Kind == kind && strings.TrimSpace(def.Dir) != "" {
			return def.Dir, true
		}
	}
	return "", false
}

func (w *Workspace) collectionDir(kind Kind) (string, error) {
	dir, ok := w.cfg.dirFor(kind)
	if !ok {
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalid, kind)
	}
	return filepath.Join(w.Root, dir), nil
}

// kindForPath maps a file or directory under Root back to its collection.
func (w *Workspace) kindForPath(path string) (Kind, bool) {
	rel, err := filepath.Rel(w.Root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	top := strings.Split(rel, string(os.PathSeparator))[0]
	for _, def := range w.cfg.Collections {
		if def.Dir == top {
			return def.Kind, true
		}
	}
	return "", false
}

func (w *Workspace) List(ctx context.Context, kind Kind) ([]Entity, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	docs, err := w.scan(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]Entity, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entity)
	}
	return out, nil
}

func (w *Workspace) Add(ctx context.Context, e Entity) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := prepareNew(e); err != nil {
		return "", err
	}
	dir, err := w.collectionDir(e.Kind())
	if err != nil {
		return "", err
	}
	if _, err := w.find(ctx, e.Kind(), e.EntityID()); err == nil {
		return "", fmt.Errorf("%w: %s %s already exists", ErrConflict, e.Kind(), e.EntityID())
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	if err := writeEntityFile(filepath.Join(dir, entityFilename(e)), e); err != nil {
		return "", err
	}
	return e.EntityID(), nil
}

func (w *Workspace) Update(ctx context.Context, kind Kind, id string, p Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.find(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := p.Apply(d.entity); err != nil {
		return err
	}
	newPath := filepath.Join(filepath.Dir(d.path), entityFilename(d.entity))
	if err := writeEntityFile(newPath, d.entity); err != nil {
		return err
	}
	if newPath != d.path {
		// Title changed, so did the slug.
		if err := os.Remove(d.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (w *Workspace) Delete(ctx context.Context, kind Kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	d, err := w.find(ctx, kind, id)
	if err != nil {
		return err
	}
	return os.Remove(d.path)
}

type document struct {
	path   string
	entity Entity
}

func (w *Workspace) find(ctx context.Context, kind Kind, id string) (*document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalid)
	}
	docs, err := w.scan(ctx, kind)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if strings.EqualFold(docs[i].entity.EntityID(), id) {
			return &docs[i], nil
		}
	}
	return nil, notFound(kind, id)
}

func (w *Workspace) scan(ctx context.Context, kind Kind) ([]document, error) {
	dir, err := w.collectionDir(kind)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return []document{}, nil
	}
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.md")
	if err != nil {
		return nil, err
	}
	docs := make([]document, 0, len(matches))
	for _, rel := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.HasPrefix(filepath.Base(rel), ".") {
			continue
		}
		path := filepath.Join(dir, filepath.FromSlash(rel))
		e, err := readEntityFile(path, kind)
		if err != nil {
			// ignore broken entity files
			continue
		}
		docs = append(docs, document{path: path, entity: e})
	}
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i].entity, docs[j].entity
		if a.Created() != b.Created() {
			return a.Created() < b.Created()
		}
		return a.EntityID() < b.EntityID()
	})
	return docs, nil
}

func entityFilename(e Entity) string {
	return fmt.Sprintf("%s__%s.md", e.EntityID(), slugify(e.PrimaryText()))
}

// entityBody returns the long-form text kept below the frontmatter.
func entityBody(e Entity) string {
	switch v := e.(type) {
	case *Task:
		return v.Description
	case *Project:
		return v.Description
	case *Note:
		return v.Content
	case *Idea:
		return v.Content
	default:
		return ""
	}
}

func setEntityBody(e Entity, body string) {
	body = strings.TrimRight(body, "\n")
	switch v := e.(type) {
	case *Task:
		v.Description = body
	case *Project:
		v.Description = body
	case *Note:
		v.Content = body
	case *Idea:
		v.Content = body
	}
}

func writeEntityFile(path string, e Entity) error {
	yamlBytes, err := yaml.Marshal(e)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(yamlBytes)
	buf.WriteString("---\n\n")
	if body := entityBody(e); strings.TrimSpace(body) != "" {
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteString("\n")
		}
	}
	return atomicWriteFile(path, buf.Bytes(), 0o644)
}

func readEntityFile(path string, kind Kind) (Entity, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	e, err := blankEntity(kind)
	if err != nil {
		return nil, err
	}
	body, err := parseFrontmatter(b, e)
	if err != nil {
		return nil, err
	}
	setEntityBody(e, strings.TrimPrefix(body, "\n"))
	if strings.TrimSpace(e.EntityID()) == "" {
		return nil, fmt.Errorf("%w: %s has no id", ErrInvalid, filepath.Base(path))
	}
	return e, nil
}

func parseFrontmatter(b []byte, meta any) (string, error) {
	s := strings.ReplaceAll(string(b), "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if !strings.HasPrefix(s, "---\n") {
		return "", fmt.Errorf("%w: missing frontmatter", ErrInvalid)
	}
	parts := strings.SplitN(s, "\n---\n", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: invalid frontmatter delimiters", ErrInvalid)
	}
	// parts[0] includes leading ---\n
	yamlPart := strings.TrimPrefix(parts[0], "---\n")
	if err := yaml.Unmarshal([]byte(yamlPart), meta); err != nil {
		return "", err
	}
	return parts[1], nil
}
