package assetstream

import (
	"context"

	"github.com/cespare/xxhash/v2"

	"github.com/hupe1980/assetstream/blobstore"
)

// Register adds handle to the registry and returns its id.
//
// On success the Manager takes ownership of handle and closes it on Close.
func (m *Manager) Register(handle blobstore.Blob, class AssetClass, prio Priority) (AssetID, error) {
	if handle == nil {
		return InvalidAssetID, ErrNilHandle
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registerLocked(handle, "", 0, false, class, prio)
}

// RegisterPath opens path through opener and registers it, or returns the
// id of an earlier registration of the same path. Concurrent calls for one
// path share a single open.
//
// On failure the returned id is InvalidAssetID and the error is a
// *RegisterError or ErrClosed / ErrTooManyAssets. If ctx ends while the open
// is in flight, the caller gets ctx's error but the shared open completes
// and registers path for the other callers.
func (m *Manager) RegisterPath(ctx context.Context, opener blobstore.Opener, path string, class AssetClass, prio Priority) (AssetID, error) {
	hash := xxhash.Sum64String(path)
	if id, ok := m.lookup(hash, path); ok {
		return id, nil
	}

	// The open is shared by every caller for path, so it must not die with
	// the first caller's context. Each caller still stops waiting on its own.
	openCtx := context.WithoutCancel(ctx)
	ch := m.opens.DoChan(path, func() (any, error) {
		if id, ok := m.lookup(hash, path); ok {
			return id, nil
		}

		h, err := opener.Open(openCtx, path)
		if err != nil {
			err = &RegisterError{Path: path, cause: err}
			m.logger.LogRegister(openCtx, path, InvalidAssetID, err)
			return InvalidAssetID, err
		}

		m.mu.Lock()
		defer m.mu.Unlock()

		indexed := true
		if prev, ok := m.byHash[hash]; ok {
			m.logger.WarnContext(openCtx, "path hash collision, indexing by path",
				"path", path,
				"existing", m.records[prev].path,
			)
			indexed = false
		}

		id, err := m.registerLocked(h, path, hash, indexed, class, prio)
		if err != nil {
			_ = h.Close()
			return InvalidAssetID, err
		}
		m.logger.LogRegister(openCtx, path, id, nil)
		return id, nil
	})

	select {
	case <-ctx.Done():
		return InvalidAssetID, &RegisterError{Path: path, cause: ctx.Err()}
	case res := <-ch:
		return res.Val.(AssetID), res.Err
	}
}

func (m *Manager) lookup(hash uint64, path string) (AssetID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byHash[hash]; ok && m.records[id].path == path {
		return id, true
	}
	if id, ok := m.collided[path]; ok {
		return id, true
	}
	return InvalidAssetID, false
}

func (m *Manager) registerLocked(handle blobstore.Blob, path string, hash uint64, indexed bool, class AssetClass, prio Priority) (AssetID, error) {
	if m.closed {
		return InvalidAssetID, ErrClosed
	}
	if uint64(len(m.records)) >= uint64(m.cfg.MaxAssets) {
		return InvalidAssetID, ErrTooManyAssets
	}

	id := AssetID(len(m.records))
	m.records = append(m.records, record{
		id:       id,
		handle:   handle,
		path:     path,
		class:    class,
		priority: prio,
	})
	switch {
	case indexed:
		m.byHash[hash] = id
	case path != "":
		if m.collided == nil {
			m.collided = make(map[string]AssetID)
		}
		m.collided[path] = id
	}

	if m.iface != nil {
		m.iface.SetIDBound(uint32(len(m.records)))
		m.iface.SetAssetClass(id, class)
	}
	return id, nil
}

// SetResidencyPriority changes the priority of id. It returns false, and
// changes nothing, if id was never registered.
func (m *Manager) SetResidencyPriority(id AssetID, prio Priority) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if int64(id) >= int64(len(m.records)) {
		return false
	}
	m.records[id].priority = prio
	return true
}

// SetInstantiator replaces the instantiator. It waits for all async work
// issued so far, releases everything the old instantiator holds, resets all
// accounting, and announces the registry to the new one. iface may be nil.
func (m *Manager) SetInstantiator(iface Instantiator) {
	m.mu.Lock()
	defer m.mu.Unlock()

	released := m.releaseAllLocked()
	if m.iface != nil {
		m.logger.LogSwap(context.Background(), released, len(m.records))
	}

	m.iface = iface
	if iface == nil || m.closed {
		m.iface = nil
		return
	}

	iface.SetIDBound(uint32(len(m.records)))
	for i := range m.records {
		iface.SetAssetClass(m.records[i].id, m.records[i].class)
	}
}
