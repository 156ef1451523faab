package loader

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/assetstream"
	"github.com/hupe1980/assetstream/blobstore"
	"github.com/hupe1980/assetstream/resource"
	"github.com/hupe1980/assetstream/taskgroup"
)

// Resource is a decoded asset.
type Resource struct {
	ID    assetstream.AssetID
	Class assetstream.AssetClass
	Data  []byte

	// Fallback is set when Data is a class placeholder rather than the
	// asset's content.
	Fallback bool
}

// Loader implements assetstream.Instantiator.
type Loader struct {
	ctx    context.Context
	rc     *resource.Controller
	logger *assetstream.Logger

	mu      sync.Mutex
	classes []assetstream.AssetClass
	staged  map[assetstream.AssetID]*Resource
	live    map[assetstream.AssetID]*Resource
	liveIDs *roaring.Bitmap
	charged map[assetstream.AssetID]int64

	// headers caches decoded sizes learned outside the registry lock.
	headers map[assetstream.AssetID]uint64
}

var _ assetstream.Instantiator = (*Loader)(nil)

// Option configures a Loader.
type Option func(*Loader)

// WithResourceController tracks decoded bytes against rc's memory limit and
// throttles blob reads with its IO limiter.
func WithResourceController(rc *resource.Controller) Option {
	return func(l *Loader) {
		l.rc = rc
	}
}

// WithLogger sets the logger used for load failures.
func WithLogger(logger *assetstream.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithContext sets the context used for blob reads.
func WithContext(ctx context.Context) Option {
	return func(l *Loader) {
		l.ctx = ctx
	}
}

// New creates a Loader.
func New(optFns ...Option) *Loader {
	l := &Loader{
		ctx:     context.Background(),
		logger:  assetstream.NoopLogger(),
		staged:  make(map[assetstream.AssetID]*Resource),
		live:    make(map[assetstream.AssetID]*Resource),
		liveIDs: roaring.New(),
		charged: make(map[assetstream.AssetID]int64),
		headers: make(map[assetstream.AssetID]uint64),
	}
	for _, fn := range optFns {
		fn(l)
	}
	return l
}

// EstimateCost returns the decoded size from the container header, or the
// blob size when the header is not known yet.
//
// It runs under the registry lock and never reads from a remote blob. Mapped
// blobs are parsed in place; others are answered from the header cache that
// Prime and completed loads fill.
func (l *Loader) EstimateCost(id assetstream.AssetID, h blobstore.Blob) uint64 {
	l.mu.Lock()
	size, ok := l.headers[id]
	l.mu.Unlock()
	if ok {
		return size
	}

	if m, ok := h.(blobstore.Mappable); ok {
		if data, err := m.Bytes(); err == nil {
			if size, ok := decodedSize(data[:min(len(data), headerSize)], h.Size()); ok {
				l.cacheHeader(id, size)
				return size
			}
		}
	}
	return uint64(h.Size())
}

// Prime reads the container header of h so that later estimates for id
// are exact. Call it outside the manager, e.g. right after RegisterPath, for
// blobs served from a remote store.
func (l *Loader) Prime(ctx context.Context, id assetstream.AssetID, h blobstore.Blob) error {
	var buf [headerSize]byte
	n, err := h.ReadAt(ctx, buf[:], 0)
	if n < headerSize {
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	}
	if size, ok := decodedSize(buf[:], h.Size()); ok {
		l.cacheHeader(id, size)
	}
	return nil
}

func (l *Loader) cacheHeader(id assetstream.AssetID, size uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.headers[id] = size
}

// decodedSize returns the plausible decoded size claimed by a header.
func decodedSize(b []byte, blobSize int64) (uint64, bool) {
	hdr, err := ParseHeader(b)
	if err != nil || checkBounds(hdr, blobSize-headerSize) != nil {
		return 0, false
	}
	return hdr.DecodedSize, true
}

// Instantiate decodes h on g and stages the result for the next Latch.
func (l *Loader) Instantiate(r assetstream.CostReporter, g *taskgroup.Group, id assetstream.AssetID, h blobstore.Blob) {
	job := func() {
		res := l.load(id, h)
		size := int64(len(res.Data))

		l.mu.Lock()
		l.staged[id] = res
		l.charged[id] = size
		l.mu.Unlock()

		r.UpdateCost(id, uint64(max(size, 1)))
	}
	if err := g.Enqueue(job); err != nil {
		l.logger.WithAsset(id).Warn("loader: enqueue failed, loading inline", "error", err)
		job()
	}
}

func (l *Loader) load(id assetstream.AssetID, h blobstore.Blob) *Resource {
	class := l.classOf(id)
	log := l.logger.WithAsset(id)

	data, err := l.read(h)
	if err == nil {
		if size, ok := decodedSize(data[:min(len(data), headerSize)], int64(len(data))); ok {
			l.cacheHeader(id, size)
		}
		data, err = Decode(data)
	}
	if err != nil {
		log.Warn("loader: using fallback", "class", class.String(), "error", err)
		return l.fallback(id, class)
	}

	if err := l.rc.AcquireMemory(int64(len(data))); err != nil {
		log.Warn("loader: memory limit reached, using fallback", "bytes", len(data), "error", err)
		return l.fallback(id, class)
	}
	return &Resource{ID: id, Class: class, Data: data}
}

func (l *Loader) read(h blobstore.Blob) ([]byte, error) {
	if _, ok := h.(blobstore.Mappable); ok {
		return blobstore.ReadAll(l.ctx, h)
	}

	rc, err := h.ReadRange(l.ctx, 0, h.Size())
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return io.ReadAll(resource.NewRateLimitedReader(l.ctx, rc, l.rc))
}

// fallback returns a placeholder. Placeholders are tiny and are not
// charged against the memory limit.
func (l *Loader) fallback(id assetstream.AssetID, class assetstream.AssetClass) *Resource {
	return &Resource{
		ID:       id,
		Class:    class,
		Data:     Placeholder(class),
		Fallback: true,
	}
}

func (l *Loader) classOf(id assetstream.AssetID) assetstream.AssetClass {
	l.mu.Lock()
	defer l.mu.Unlock()
	if int(id) < len(l.classes) {
		return l.classes[id]
	}
	return assetstream.ClassImageGeneric
}

// Release drops the resource for id and returns its memory.
func (l *Loader) Release(id assetstream.AssetID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := l.live[id]
	if res == nil {
		res = l.staged[id]
	}
	if res != nil && !res.Fallback {
		l.rc.ReleaseMemory(l.charged[id])
	}
	delete(l.staged, id)
	delete(l.live, id)
	delete(l.charged, id)
	l.liveIDs.Remove(uint32(id))
}

// SetIDBound grows the class table to bound entries.
func (l *Loader) SetIDBound(bound uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if int(bound) > len(l.classes) {
		l.classes = append(l.classes, make([]assetstream.AssetClass, int(bound)-len(l.classes))...)
	}
}

// SetAssetClass records the class used to pick a placeholder for id.
func (l *Loader) SetAssetClass(id assetstream.AssetID, class assetstream.AssetClass) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if int(id) >= len(l.classes) {
		l.classes = append(l.classes, make([]assetstream.AssetClass, int(id)+1-len(l.classes))...)
	}
	l.classes[id] = class
}

// Latch publishes everything staged since the previous Latch.
func (l *Loader) Latch() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, res := range l.staged {
		l.live[id] = res
		l.liveIDs.Add(uint32(id))
	}
	clear(l.staged)
}

// Get returns the published resource for id.
func (l *Loader) Get(id assetstream.AssetID) (*Resource, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	res, ok := l.live[id]
	return res, ok
}

// Live returns a snapshot of the published ids.
func (l *Loader) Live() *roaring.Bitmap {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.liveIDs.Clone()
}

// LiveCount returns the number of published resources.
func (l *Loader) LiveCount() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.liveIDs.GetCardinality()
}
