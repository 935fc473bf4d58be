// Package memory provides an in-process implementation of drive.Client.
//
// It keeps entries in a map, counts every call by operation and supports
// fault injection, which makes it the backbone of the resolver, gateway and
// handler tests. It is also selectable as the "memory" drive backend for
// running the gateway without Google credentials.
package memory

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/transpoze/drivegate/pkg/drive"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
)

// Op names a Client method for call counting and fault injection.
type Op string

const (
	OpList             Op = "list"
	OpCreateFolder     Op = "create_folder"
	OpCreateFile       Op = "create_file"
	OpGet              Op = "get"
	OpCopy             Op = "copy"
	OpDelete           Op = "delete"
	OpCreatePermission Op = "create_permission"
	OpAbout            Op = "about"
)

type file struct {
	entry       drive.Entry
	content     []byte
	permissions []drive.Permission
}

// Client is an in-memory drive.Client. The zero value is not usable; call New.
type Client struct {
	mu      sync.Mutex
	files   map[string]*file
	order   []string
	calls   map[Op]int
	faults  map[Op]error
	omitIDs map[Op]bool
	hook    func(Op)
	now     func() time.Time
}

var _ drive.Client = (*Client)(nil)

// New creates an empty in-memory Drive.
func New() *Client {
	return &Client{
		files:   make(map[string]*file),
		calls:   make(map[Op]int),
		faults:  make(map[Op]error),
		omitIDs: make(map[Op]bool),
		now:     time.Now,
	}
}

// ============================================================================
// Test controls
// ============================================================================

// Calls returns how many times op was invoked.
func (c *Client) Calls(op Op) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (c *Client) TotalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.calls {
		total += n
	}
	return total
}

// ResetCalls zeroes all call counters.
func (c *Client) ResetCalls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = make(map[Op]int)
}

// FailOn makes every subsequent call to op return err. A nil err clears it.
func (c *Client) FailOn(op Op, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.faults, op)
		return
	}
	c.faults[op] = err
}

// OmitIDOn makes op succeed but return an entry without an id.
func (c *Client) OmitIDOn(op Op, omit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.omitIDs[op] = omit
}

// OnCall registers a hook run (outside the lock) at the start of every call.
func (c *Client) OnCall(hook func(Op)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hook = hook
}

// Seed inserts an entry as-is. Missing ids are generated, a missing parent
// means root, and a zero CreatedTime is set to now.
func (c *Client) Seed(e drive.Entry) *drive.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if len(e.Parents) == 0 {
		e.Parents = []string{drive.RootID}
	}
	if e.CreatedTime.IsZero() {
		e.CreatedTime = c.now()
	}
	if e.ModifiedTime.IsZero() {
		e.ModifiedTime = e.CreatedTime
	}
	c.insertLocked(&file{entry: e})
	out := e
	return &out
}

// Content returns the bytes stored for id.
func (c *Client) Content(id string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.files[id]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), f.content...), true
}

// Permissions returns the grants recorded on id.
func (c *Client) Permissions(id string) []drive.Permission {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.files[id]
	if !ok {
		return nil
	}
	return append([]drive.Permission(nil), f.permissions...)
}

// Count returns the number of stored entries (trashed included).
func (c *Client) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.files)
}

// ============================================================================
// drive.Client
// ============================================================================

// begin counts the call, runs the hook and returns any injected fault.
func (c *Client) begin(op Op) error {
	c.mu.Lock()
	c.calls[op]++
	hook := c.hook
	fault := c.faults[op]
	c.mu.Unlock()

	if hook != nil {
		hook(op)
	}
	return fault
}

// List implements drive.Client.
func (c *Client) List(ctx context.Context, q drive.Query) ([]*drive.Entry, error) {
	if err := c.begin(OpList); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, gwerrors.NewRemoteUnavailableError("memory.list", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*drive.Entry
	for _, id := range c.order {
		f := c.files[id]
		if !matches(&f.entry, q) {
			continue
		}
		e := f.entry
		out = append(out, &e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedTime.Before(out[j].CreatedTime)
	})
	return out, nil
}

func matches(e *drive.Entry, q drive.Query) bool {
	if e.Trashed && !q.IncludeTrashed {
		return false
	}
	switch q.Kind {
	case drive.KindFolder:
		if !e.IsFolder() {
			return false
		}
	case drive.KindFile:
		if e.IsFolder() {
			return false
		}
	}
	if q.Name != "" && e.Name != q.Name {
		return false
	}
	if q.NameContains != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(q.NameContains)) {
		return false
	}
	if q.ParentID != "" && !hasParent(e, q.ParentID) {
		return false
	}
	return true
}

func hasParent(e *drive.Entry, parentID string) bool {
	for _, p := range e.Parents {
		if p == parentID {
			return true
		}
	}
	return false
}

// CreateFolder implements drive.Client.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (*drive.Entry, error) {
	if err := c.begin(OpCreateFolder); err != nil {
		return nil, err
	}
	return c.create(OpCreateFolder, name, drive.FolderMimeType, parentID, nil)
}

// CreateFile implements drive.Client.
func (c *Client) CreateFile(ctx context.Context, name, mimeType, parentID string, content io.Reader) (*drive.Entry, error) {
	if err := c.begin(OpCreateFile); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, gwerrors.NewUploadFailedError("memory.create_file", "read content", err)
	}
	return c.create(OpCreateFile, name, mimeType, parentID, data)
}

func (c *Client) create(op Op, name, mimeType, parentID string, data []byte) (*drive.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if parentID == "" {
		parentID = drive.RootID
	}
	if parentID != drive.RootID {
		if _, ok := c.files[parentID]; !ok {
			return nil, gwerrors.NewNotFoundError("memory."+string(op), parentID)
		}
	}

	id := uuid.NewString()
	now := c.now()
	f := &file{
		entry: drive.Entry{
			ID:             id,
			Name:           name,
			MimeType:       mimeType,
			Size:           int64(len(data)),
			CreatedTime:    now,
			ModifiedTime:   now,
			WebViewLink:    "https://drive.example/view/" + id,
			WebContentLink: "https://drive.example/download/" + id,
			Parents:        []string{parentID},
		},
		content: data,
	}
	c.insertLocked(f)

	out := f.entry
	if c.omitIDs[op] {
		out.ID = ""
	}
	return &out, nil
}

func (c *Client) insertLocked(f *file) {
	if _, exists := c.files[f.entry.ID]; !exists {
		c.order = append(c.order, f.entry.ID)
	}
	c.files[f.entry.ID] = f
}

// Get implements drive.Client.
func (c *Client) Get(ctx context.Context, id string) (*drive.Entry, error) {
	if err := c.begin(OpGet); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.files[id]
	if !ok {
		return nil, gwerrors.NewNotFoundError("memory.get", id)
	}
	e := f.entry
	return &e, nil
}

// Copy implements drive.Client.
func (c *Client) Copy(ctx context.Context, id, name string) (*drive.Entry, error) {
	if err := c.begin(OpCopy); err != nil {
		return nil, err
	}
	c.mu.Lock()
	src, ok := c.files[id]
	c.mu.Unlock()
	if !ok {
		return nil, gwerrors.NewNotFoundError("memory.copy", id)
	}
	return c.create(OpCopy, name, src.entry.MimeType, src.entry.FirstParent(), src.content)
}

// Delete implements drive.Client. Folders are removed with their descendants.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.begin(OpDelete); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.files[id]; !ok {
		return gwerrors.NewNotFoundError("memory.delete", id)
	}
	c.deleteLocked(id)
	return nil
}

func (c *Client) deleteLocked(id string) {
	for childID, f := range c.files {
		if hasParent(&f.entry, id) {
			c.deleteLocked(childID)
		}
	}
	delete(c.files, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// CreatePermission implements drive.Client.
func (c *Client) CreatePermission(ctx context.Context, id string, p drive.Permission) (string, error) {
	if err := c.begin(OpCreatePermission); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.files[id]
	if !ok {
		return "", gwerrors.NewNotFoundError("memory.create_permission", id)
	}
	if !p.Role.IsValid() {
		return "", gwerrors.NewInvalidArgumentsError("memory.create_permission", fmt.Sprintf("invalid role %q", p.Role))
	}
	f.permissions = append(f.permissions, p)
	return fmt.Sprintf("perm-%d", len(f.permissions)), nil
}

// About implements drive.Client.
func (c *Client) About(ctx context.Context) (*drive.About, error) {
	if err := c.begin(OpAbout); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var usage int64
	for _, f := range c.files {
		usage += int64(len(f.content))
	}
	return &drive.About{
		UserEmail:    "gateway@memory.local",
		UserName:     "In-memory Drive",
		QuotaUsage:   usage,
		UsageInDrive: usage,
	}, nil
}
