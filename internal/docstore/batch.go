package docstore

import (
	"context"
	"encoding/json"
	"fmt"
)

type opKind int

const (
	opSet opKind = iota
	opDelete
	opClear
)

type op struct {
	kind       opKind
	collection string
	id         string
	doc        string
}

// Batch stages writes across any number of collections and commits them in
// a single SQL transaction: either every staged operation lands or none do.
// There is no cross-batch atomicity and no automatic retry; a failed commit
// leaves the store exactly as it was.
type Batch struct {
	store *Store
	ops   []op
	err   error
}

// NewBatch starts an empty batch.
func (s *Store) NewBatch() *Batch { return &Batch{store: s} }

// Set stages an upsert of v under (collection, id). Marshal failures are
// remembered and reported by Commit.
func (b *Batch) Set(collection, id string, v any) *Batch {
	if !validCollection[collection] {
		b.err = fmt.Errorf("unknown collection %q", collection)
		return b
	}
	body, err := json.Marshal(v)
	if err != nil {
		b.err = fmt.Errorf("marshal %s/%s: %w", collection, id, err)
		return b
	}
	b.ops = append(b.ops, op{kind: opSet, collection: collection, id: id, doc: string(body)})
	return b
}

// Delete stages removal of the document with the given id. Deleting a
// missing document is a no-op.
func (b *Batch) Delete(collection, id string) *Batch {
	if !validCollection[collection] {
		b.err = fmt.Errorf("unknown collection %q", collection)
		return b
	}
	b.ops = append(b.ops, op{kind: opDelete, collection: collection, id: id})
	return b
}

// Clear stages removal of every document in the collection.
func (b *Batch) Clear(collection string) *Batch {
	if !validCollection[collection] {
		b.err = fmt.Errorf("unknown collection %q", collection)
		return b
	}
	b.ops = append(b.ops, op{kind: opClear, collection: collection})
	return b
}

// Empty reports whether the batch has no staged operations.
func (b *Batch) Empty() bool { return len(b.ops) == 0 }

// Commit applies all staged operations in one transaction and then
// publishes a change note for every touched collection. Notification
// failures do not fail the commit: the data is durable either way and
// subscribers resync on the next note.
func (b *Batch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if len(b.ops) == 0 {
		return nil
	}
	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, o := range b.ops {
		switch o.kind {
		case opSet:
			_, err = tx.ExecContext(ctx,
				fmt.Sprintf("REPLACE INTO %s (id, doc) VALUES (?, ?)", o.collection), o.id, o.doc)
		case opDelete:
			_, err = tx.ExecContext(ctx,
				fmt.Sprintf("DELETE FROM %s WHERE id = ?", o.collection), o.id)
		case opClear:
			_, err = tx.ExecContext(ctx,
				fmt.Sprintf("DELETE FROM %s", o.collection))
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("batch op on %s: %w", o.collection, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	touched := map[string]bool{}
	for _, o := range b.ops {
		if !touched[o.collection] {
			touched[o.collection] = true
			_ = b.store.notifier.Publish(ctx, o.collection)
		}
	}
	return nil
}
