// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rnt-network/stakeledger/kv"
)

// StorageEncoder the interface of structed storage to be encoded.
// Returning empty data means the entry is default-valued and will be deleted.
type StorageEncoder interface {
	Encode() ([]byte, error)
}

// StorageDecoder the interface of structed storage to be decoded.
// Empty data is passed in when the entry does not exist.
type StorageDecoder interface {
	Decode([]byte) error
}

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// State manages the ledger state with checkpoint-revert and batched commit.
//
// All getters and setters defer errors: the first storage access failure is
// latched and observable via Err. This keeps call sites free of error
// plumbing while an operation is being assembled. RevertTo discards the
// latch along with the journaled writes, so a long-lived state recovers
// once a failed operation has been rolled back.
type State struct {
	store kv.Store
	jn    *journal

	errMu sync.Mutex
	err   error
}

// New creates a state object backed by the given store.
func New(store kv.Store) *State {
	s := &State{store: store}
	s.jn = newJournal(func(key string) ([]byte, error) {
		data, err := store.Get([]byte(key))
		if err != nil {
			if store.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return data, nil
	})
	return s
}

// Err returns the first error occurred during state access, if any.
func (s *State) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *State) setError(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = &Error{err}
	}
}

// NewCheckpoint makes a checkpoint of current state.
// It returns the checkpoint to be passed to RevertTo.
func (s *State) NewCheckpoint() int {
	return s.jn.push()
}

// RevertTo reverts the state to the given checkpoint and clears the
// latched error.
func (s *State) RevertTo(checkpoint int) {
	s.jn.popTo(checkpoint)
	s.errMu.Lock()
	s.err = nil
	s.errMu.Unlock()
}

// GetStructed decodes the stored value at key into val.
func (s *State) GetStructed(key []byte, val StorageDecoder) {
	data, err := s.jn.get(string(key))
	if err != nil {
		s.setError(err)
		return
	}
	if err := val.Decode(data); err != nil {
		s.setError(err)
	}
}

// SetStructed encodes val and stores it at key.
// Empty encoded data deletes the entry.
func (s *State) SetStructed(key []byte, val StorageEncoder) {
	data, err := val.Encode()
	if err != nil {
		s.setError(err)
		return
	}
	s.jn.put(string(key), data)
}

// GetBigInt loads a big.Int scalar, zero if absent.
func (s *State) GetBigInt(key []byte) *big.Int {
	data, err := s.jn.get(string(key))
	if err != nil {
		s.setError(err)
		return &big.Int{}
	}
	if len(data) == 0 {
		return &big.Int{}
	}
	var v big.Int
	if err := rlp.DecodeBytes(data, &v); err != nil {
		s.setError(err)
		return &big.Int{}
	}
	return &v
}

// SetBigInt stores a big.Int scalar, deleting the entry when zero.
func (s *State) SetBigInt(key []byte, v *big.Int) {
	if v.Sign() == 0 {
		s.jn.put(string(key), nil)
		return
	}
	data, err := rlp.EncodeToBytes(v)
	if err != nil {
		s.setError(err)
		return
	}
	s.jn.put(string(key), data)
}

// Commit writes all uncommitted revisions to the store in one batch and
// collapses the journal. It must not be called with open checkpoints that
// may still be reverted.
func (s *State) Commit() error {
	if err := s.Err(); err != nil {
		return err
	}

	batch := s.store.NewBatch()
	var err error
	s.jn.changed(func(key string, value []byte) bool {
		if len(value) == 0 {
			err = batch.Delete([]byte(key))
		} else {
			err = batch.Put([]byte(key), value)
		}
		return err == nil
	})
	if err == nil {
		err = batch.Write()
	}
	if err != nil {
		s.setError(err)
		return s.Err()
	}
	s.jn.reset()
	return nil
}
