// Package directory builds the folder hierarchy that organizes vertices and
// edges in the address space. Folders are created from slash-separated
// paths on first use and memoized, so every path prefix materializes exactly
// once per root no matter how many elements share it.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/specialistvlad/graphua/internal/ctxlog"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/nodestore"
	"github.com/specialistvlad/graphua/internal/registry"
)

type cacheKey struct {
	root   nodeid.ID
	prefix string
}

// Builder places elements under folder paths.
type Builder struct {
	store     nodestore.Store
	namespace uint16

	mu    sync.Mutex
	cache map[cacheKey]nodeid.ID
}

// New creates a Builder whose folders get string ids in namespace ns.
func New(store nodestore.Store, ns uint16) *Builder {
	return &Builder{
		store:     store,
		namespace: ns,
		cache:     make(map[cacheKey]nodeid.ID),
	}
}

// Segments splits a path on '/' and drops empty segments.
func Segments(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Place organizes element under root/path, creating missing folders. An
// empty path organizes element directly under root.
func (b *Builder) Place(ctx context.Context, element, root nodeid.ID, path string) error {
	parent := root
	if segments := Segments(path); len(segments) > 0 {
		folder, err := b.ensure(ctx, root, segments)
		if err != nil {
			return err
		}
		parent = folder
	}
	if err := b.store.AddReference(ctx, node.NewReference(parent, registry.Organizes, element)); err != nil {
		return fmt.Errorf("place %s under %s: %w", element, parent, err)
	}
	return nil
}

// FolderFor returns the folder already built for root/path.
func (b *Builder) FolderFor(root nodeid.ID, path string) (nodeid.ID, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.cache[cacheKey{root: root, prefix: strings.Join(Segments(path), "/")}]
	return id, ok
}

func (b *Builder) ensure(ctx context.Context, root nodeid.ID, segments []string) (nodeid.ID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	parent := root
	for i, segment := range segments {
		prefix := strings.Join(segments[:i+1], "/")
		key := cacheKey{root: root, prefix: prefix}
		if id, ok := b.cache[key]; ok {
			parent = id
			continue
		}

		id, err := b.createFolder(ctx, root, parent, segment, prefix)
		if err != nil {
			return nodeid.Null, err
		}
		b.cache[key] = id
		parent = id
	}
	return parent, nil
}

func (b *Builder) createFolder(ctx context.Context, root, parent nodeid.ID, segment, prefix string) (nodeid.ID, error) {
	id := nodeid.NewString(b.namespace, root.Identifier()+"/"+prefix)
	folder := node.NewFolder(id, node.NewQualifiedName(b.namespace, segment), prefix)

	if err := b.store.Insert(ctx, folder); err != nil {
		if !errors.Is(err, nodestore.ErrDuplicateIdentifier) {
			return nodeid.Null, fmt.Errorf("create folder %q: %w", prefix, err)
		}
		// The id is taken. Reuse it only if it is a folder for the same path.
		existing, getErr := b.store.Get(ctx, id)
		if getErr != nil {
			return nodeid.Null, fmt.Errorf("create folder %q: %w", prefix, getErr)
		}
		if f, ok := existing.(*node.Folder); !ok || f.Path() != prefix {
			return nodeid.Null, fmt.Errorf("create folder %q: %w", prefix, err)
		}
		return id, nil
	}

	if err := b.store.AddReference(ctx, node.NewReference(id, registry.HasTypeDefinition, registry.FolderType)); err != nil {
		return nodeid.Null, fmt.Errorf("type folder %q: %w", prefix, err)
	}
	if err := b.store.AddReference(ctx, node.NewReference(parent, registry.Organizes, id)); err != nil {
		return nodeid.Null, fmt.Errorf("link folder %q: %w", prefix, err)
	}
	ctxlog.FromContext(ctx).Debug("Folder created.", "path", prefix, "id", id.String())
	return id, nil
}
