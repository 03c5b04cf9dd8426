// Package store is a badger-backed message store. It backs the messages REST
// surface when the server runs standalone as its own persistence gateway.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mindmend/sessiond/internal/domain"
)

const keyPrefix = "msg/"

// MessageStore appends and reads chat messages. Rows are keyed by the
// canonical participant pair and creation time, so iteration order is
// persisted order.
type MessageStore struct {
	db *badger.DB
}

func Open(path string) (*MessageStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open message store: %w", err)
	}
	log.Info().Str("module", "store").Str("path", path).Msg("message store opened")
	return &MessageStore{db: db}, nil
}

func (s *MessageStore) Close() error {
	return s.db.Close()
}

// Append persists one message, assigning ID and CreatedAt.
func (s *MessageStore) Append(msg domain.ChatMessage) (domain.ChatMessage, error) {
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now().UTC()

	value, err := json.Marshal(msg)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("encode message: %w", err)
	}
	key := messageKey(msg)
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	}); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return msg, nil
}

// History returns the conversation between a and b, creation time ascending.
func (s *MessageStore) History(a, b domain.ParticipantID) ([]domain.ChatMessage, error) {
	prefix := []byte(keyPrefix + domain.PairKey(a, b) + "/")

	var out []domain.ChatMessage
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var msg domain.ChatMessage
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &msg)
			}); err != nil {
				return err
			}
			out = append(out, msg)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return out, nil
}

// messageKey sorts lexicographically in creation order within a pair.
func messageKey(msg domain.ChatMessage) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d/%s",
		keyPrefix,
		domain.PairKey(msg.SenderID, msg.ReceiverID),
		msg.CreatedAt.UnixNano(),
		msg.ID,
	))
}
