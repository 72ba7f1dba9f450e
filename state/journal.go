// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

// journal maintains uncommitted storage revisions in a stack of levels.
// Each level inherits key/values of levels below it, giving save-restore
// semantics: Push opens a checkpoint, PopTo discards everything written
// since the given checkpoint.
type journal struct {
	src    func(key string) ([]byte, error)
	levels []map[string][]byte
}

func newJournal(src func(key string) ([]byte, error)) *journal {
	return &journal{
		src:    src,
		levels: []map[string][]byte{make(map[string][]byte)},
	}
}

// push opens a new level. It returns the depth before push.
func (j *journal) push() int {
	j.levels = append(j.levels, make(map[string][]byte))
	return len(j.levels) - 1
}

// popTo discards levels until depth reaches the given value.
func (j *journal) popTo(depth int) {
	if depth < 1 {
		depth = 1
	}
	j.levels = j.levels[:depth]
}

func (j *journal) depth() int {
	return len(j.levels)
}

// get returns the value for key, looking through levels from top to bottom
// and falling back to the committed source.
func (j *journal) get(key string) ([]byte, error) {
	for i := len(j.levels) - 1; i >= 0; i-- {
		if v, ok := j.levels[i][key]; ok {
			return v, nil
		}
	}
	return j.src(key)
}

// put records a value at the top level. A nil value marks deletion.
func (j *journal) put(key string, value []byte) {
	j.levels[len(j.levels)-1][key] = value
}

// changed iterates final values of every touched key.
func (j *journal) changed(cb func(key string, value []byte) bool) {
	seen := make(map[string]struct{})
	for i := len(j.levels) - 1; i >= 0; i-- {
		for k, v := range j.levels[i] {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			if !cb(k, v) {
				return
			}
		}
	}
}

// reset drops all levels and starts over with a single empty one.
func (j *journal) reset() {
	j.levels = []map[string][]byte{make(map[string][]byte)}
}
