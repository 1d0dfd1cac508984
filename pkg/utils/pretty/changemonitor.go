/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pretty

import (
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/patrickmn/go-cache"
)

// ChangeMonitor remembers the hash of the last planning input observed per
// plan so the planner only logs a snapshot when it actually drifted.
// Entries expire so a plan that goes quiet logs its inputs again on the
// next run rather than staying silent across log rotations.
type ChangeMonitor struct {
	lastSeen *cache.Cache
}

func NewChangeMonitor(visibilityTimeout time.Duration) *ChangeMonitor {
	if visibilityTimeout <= 0 {
		visibilityTimeout = 24 * time.Hour
	}
	return &ChangeMonitor{
		lastSeen: cache.New(visibilityTimeout, visibilityTimeout/2),
	}
}

// HasChanged hashes the value and compares it against the last hash
// recorded under the key, storing the new hash either way. A value that
// cannot be hashed always reads as changed.
func (c *ChangeMonitor) HasChanged(key string, value any) bool {
	hash, err := hashstructure.Hash(value, hashstructure.FormatV2, nil)
	if err != nil {
		return true
	}
	previous, seen := c.lastSeen.Get(key)
	c.lastSeen.SetDefault(key, hash)
	return !seen || previous.(uint64) != hash
}
