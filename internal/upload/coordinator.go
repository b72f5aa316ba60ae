package upload

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"laporan/internal/content"
)

// State tracks one pending upload through its lifecycle.
type State int

const (
	StateQueued State = iota
	StateUploading
	StateSucceeded
	StateFailed
)

type PendingUpload struct {
	LocalID int64
	Name    string
	State   State
	Err     error
}

// Surface is the editing surface's "insert node at cursor" capability. The
// coordinator only guarantees that images appear in enqueue order; how a
// node is rendered is the surface's concern.
type Surface interface {
	InsertImage(id int64, src string)
	UpdateImageSource(id int64, src string)
	RemoveImage(id int64)
}

// Client uploads one image to the storage collaborator and returns its
// permanent address.
type Client interface {
	UploadImage(ctx context.Context, category, name string, data []byte) (string, error)
}

type Options struct {
	// Category tags the upload destination (e.g. "target", "media-sosial").
	Category string
	// MaxBytes is the caller-supplied size ceiling; 0 disables the check.
	MaxBytes int64
	Resolver *content.URLResolver
	// OnError is invoked after a failed upload has removed its inline node.
	OnError func(id int64, err error)
}

// Coordinator manages the asynchronous lifecycle of pasted or selected
// images during one editing session. Enqueue validates and inserts the
// inline node synchronously, so document order always matches enqueue order
// even though uploads complete in any order.
type Coordinator struct {
	opts    Options
	client  Client
	surface Surface

	mu      sync.Mutex
	wg      sync.WaitGroup
	pending map[int64]*PendingUpload
	done    []content.ImageRef
	digests map[[blake2b.Size256]byte]string
}

func NewCoordinator(client Client, surface Surface, opts Options) *Coordinator {
	if opts.Resolver == nil {
		opts.Resolver = &content.URLResolver{}
	}
	return &Coordinator{
		opts:    opts,
		client:  client,
		surface: surface,
		pending: map[int64]*PendingUpload{},
		digests: map[[blake2b.Size256]byte]string{},
	}
}

// Enqueue validates data, inserts an inline node at the surface's cursor
// with a temporary preview address, and starts the upload. The returned id
// is already embedded in the document when Enqueue returns. Rejections are
// *ValidationError and cause no network activity.
func (c *Coordinator) Enqueue(ctx context.Context, name string, data []byte) (int64, error) {
	if err := validateImage(name, data, c.opts.MaxBytes); err != nil {
		return 0, err
	}
	digest := blake2b.Sum256(data)

	c.mu.Lock()
	id := c.allocID()
	if url, ok := c.digests[digest]; ok {
		// Same bytes already uploaded in this session; reuse the stored
		// address under a fresh id without another round trip.
		c.done = append(c.done, content.ImageRef{ID: id, URL: url, Name: name})
		c.mu.Unlock()
		c.surface.InsertImage(id, c.opts.Resolver.Normalize(url))
		return id, nil
	}
	p := &PendingUpload{LocalID: id, Name: name, State: StateUploading}
	c.pending[id] = p
	c.mu.Unlock()

	c.surface.InsertImage(id, previewAddr(id))
	c.wg.Add(1)
	go c.run(ctx, p, data, digest)
	return id, nil
}

func (c *Coordinator) run(ctx context.Context, p *PendingUpload, data []byte, digest [blake2b.Size256]byte) {
	defer c.wg.Done()
	url, err := c.client.UploadImage(ctx, c.opts.Category, p.Name, data)

	c.mu.Lock()
	delete(c.pending, p.LocalID)
	if err != nil {
		p.State = StateFailed
		p.Err = err
		c.mu.Unlock()
		c.surface.RemoveImage(p.LocalID)
		slog.Warn("image upload failed", "id", p.LocalID, "name", p.Name, "err", err)
		if c.opts.OnError != nil {
			c.opts.OnError(p.LocalID, err)
		}
		return
	}
	p.State = StateSucceeded
	c.digests[digest] = url
	c.done = append(c.done, content.ImageRef{ID: p.LocalID, URL: url, Name: p.Name})
	c.mu.Unlock()

	c.surface.UpdateImageSource(p.LocalID, c.opts.Resolver.Normalize(url))
	slog.Debug("image uploaded", "id", p.LocalID, "name", p.Name, "url", url)
}

// Wait blocks until every in-flight upload has resolved or failed. Submission
// must not encode the document while uploads are pending.
func (c *Coordinator) Wait(ctx context.Context) error {
	ch := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(ch)
	}()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Images returns metadata for every upload that succeeded in this session.
func (c *Coordinator) Images() []content.ImageRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]content.ImageRef, len(c.done))
	copy(out, c.done)
	return out
}

// Pending reports how many uploads are still in flight.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// allocID re-rolls until the id is unused in this session. Ids must stay
// unique within one document even when enqueues land on the same
// millisecond. Callers hold c.mu.
func (c *Coordinator) allocID() int64 {
	for {
		id := NewImageID(time.Now())
		if _, taken := c.pending[id]; taken {
			continue
		}
		if _, taken := findRef(c.done, id); taken {
			continue
		}
		return id
	}
}

func findRef(refs []content.ImageRef, id int64) (content.ImageRef, bool) {
	for _, ref := range refs {
		if ref.ID == id {
			return ref, true
		}
	}
	return content.ImageRef{}, false
}

func previewAddr(id int64) string {
	return fmt.Sprintf("pending://image/%d", id)
}
