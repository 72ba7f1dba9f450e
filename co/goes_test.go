// Copyright (c) 2024 The RNT StakeLedger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoes(t *testing.T) {
	var g Goes
	var ran atomic.Int32

	for range [5]struct{}{} {
		g.Go(func() { ran.Add(1) })
	}
	<-g.Done()
	assert.Equal(t, int32(5), ran.Load())

	g.Go(func() { ran.Add(1) })
	g.Wait()
	assert.Equal(t, int32(6), ran.Load())
}
