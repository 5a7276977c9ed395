package docstore

import (
	"context"
	"log"
)

// Snapshot is one full-collection state delivered to a watcher. Watchers
// replace their local copy wholesale rather than merging.
type Snapshot struct {
	Collection string
	Docs       []Document
}

// Watch returns a stream of full snapshots for one collection plus a
// release func. The first snapshot is delivered immediately; afterwards a
// new one is sent whenever a change note for the collection arrives. The
// release func must be called when the owning scope is torn down so the
// underlying subscription does not leak.
//
// Snapshot reads that fail are logged and skipped; the watcher keeps its
// previous state and catches up on the next note.
func (s *Store) Watch(ctx context.Context, collection string) (<-chan Snapshot, func(), error) {
	notes, unsubscribe, err := s.notifier.Subscribe(ctx)
	if err != nil {
		return nil, nil, err
	}
	wctx, cancel := context.WithCancel(ctx)
	out := make(chan Snapshot, 1)

	release := func() {
		cancel()
		unsubscribe()
	}

	go func() {
		defer close(out)
		send := func() {
			docs, err := s.ReadAll(wctx, collection)
			if err != nil {
				if wctx.Err() == nil {
					log.Printf("docstore: watch %s: read snapshot: %v", collection, err)
				}
				return
			}
			select {
			case out <- Snapshot{Collection: collection, Docs: docs}:
			case <-wctx.Done():
			}
		}

		send()
		for {
			select {
			case <-wctx.Done():
				return
			case col, ok := <-notes:
				if !ok {
					return
				}
				if col == collection {
					send()
				}
			}
		}
	}()

	return out, release, nil
}
