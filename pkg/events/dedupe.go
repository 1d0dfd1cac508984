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

package events

import (
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// DedupeRecorder wraps a Recorder so repeats of the same event (same type,
// reason, and involved object, such as a plan re-run publishing the same
// conflicts again) reach the sink once per TTL, and the overall event flow
// is rate limited.
type DedupeRecorder struct {
	rec     Recorder
	seen    *cache.Cache
	limiter *rate.Limiter
}

func NewDedupeRecorder(rec Recorder) *DedupeRecorder {
	return &DedupeRecorder{
		rec:     rec,
		seen:    cache.New(2*time.Minute, time.Minute),
		limiter: rate.NewLimiter(rate.Limit(10), 25),
	}
}

func (d *DedupeRecorder) Publish(evt Event) {
	key := evt.dedupeKey()
	if _, found := d.seen.Get(key); found {
		return
	}
	if !d.limiter.Allow() {
		return
	}
	d.seen.SetDefault(key, struct{}{})
	d.rec.Publish(evt)
}
