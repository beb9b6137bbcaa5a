// Package file provides a file-based persistence implementation that keeps every entity in
// a single JSON document.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dukex/workflows-api/pkg/models"
	"github.com/dukex/workflows-api/pkg/persistence"
	"github.com/google/uuid"
)

const documentName = "workflows.json"

// document is the on-disk layout. Slices keep insertion order, which is the listing order.
type document struct {
	Users          []*models.User                `json:"users"`
	Workflows      []*models.Workflow            `json:"workflows"`
	Permissions    []*models.Permission          `json:"permissions"`
	Nodes          []*models.Node                `json:"nodes"`
	Configurations []*models.ConfigurationRecord `json:"configurations"`
	Edges          []*models.Edge                `json:"edges"`
}

func (d *document) clone() (*document, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to copy document: %w", err)
	}

	copied := &document{}
	if err := json.Unmarshal(data, copied); err != nil {
		return nil, fmt.Errorf("failed to copy document: %w", err)
	}

	return copied, nil
}

// Persistence implements persistence.Persistence on the file system. Transactions are
// serialized; each one works on a copy of the document that replaces the original only
// when the transaction succeeds.
type Persistence struct {
	root string
	mu   sync.Mutex
	doc  *document
	now  func() time.Time
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root: cleanRoot,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Transaction runs fn against a copy of the document and writes the copy on success.
func (fp *Persistence) Transaction(ctx context.Context, fn func(ctx context.Context, store persistence.Store) error) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	current, err := fp.load()
	if err != nil {
		return err
	}

	working, err := current.clone()
	if err != nil {
		return err
	}

	if err := fn(ctx, &store{doc: working, now: fp.now}); err != nil {
		return err
	}

	if err := fp.write(working); err != nil {
		return err
	}

	fp.doc = working

	return nil
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the root directory exists and is a directory.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	info, err := os.Stat(fp.root)
	if err != nil {
		return fmt.Errorf("file persistence root unavailable: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("file persistence root %s is not a directory", fp.root)
	}

	return nil
}

func (fp *Persistence) path() string {
	return filepath.Join(fp.root, documentName)
}

func (fp *Persistence) load() (*document, error) {
	if fp.doc != nil {
		return fp.doc, nil
	}

	data, err := os.ReadFile(fp.path())
	if errors.Is(err, os.ErrNotExist) {
		fp.doc = &document{}

		return fp.doc, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fp.path(), err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", fp.path(), err)
	}

	fp.doc = doc

	return doc, nil
}

// write replaces the document atomically through a temporary file in the same directory.
func (fp *Persistence) write(doc *document) error {
	err := os.MkdirAll(fp.root, 0o750)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fp.root, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	tmp, err := os.CreateTemp(fp.root, documentName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tmp.Name(), fp.path()); err != nil {
		return fmt.Errorf("failed to replace %s: %w", fp.path(), err)
	}

	return nil
}

// store binds the repositories to the document of one transaction.
type store struct {
	doc *document
	now func() time.Time
}

func (s *store) Users() persistence.UserRepository {
	return &userRepository{store: s}
}

func (s *store) Permissions() persistence.PermissionRepository {
	return &permissionRepository{store: s}
}

func (s *store) Workflows() persistence.WorkflowRepository {
	return &workflowRepository{store: s}
}

func (s *store) Nodes() persistence.NodeRepository {
	return &nodeRepository{store: s}
}

func (s *store) Edges() persistence.EdgeRepository {
	return &edgeRepository{store: s}
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate ID: %w", err)
	}

	return id.String(), nil
}
