package devbackend

import (
	"fmt"
	"maps"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

type item map[string]any

// collection is an insertion ordered in-memory document set.
type collection struct {
	now func() time.Time

	lock  sync.RWMutex
	order []string
	items map[string]item
}

func newCollection(now func() time.Time) *collection {
	return &collection{now: now, items: make(map[string]item)}
}

func (c *collection) Insert(fields item) item {
	c.lock.Lock()
	defer c.lock.Unlock()

	doc := maps.Clone(fields)
	if doc == nil {
		doc = item{}
	}
	id := uuid.New().String()
	now := c.now().UTC().Format(time.RFC3339)
	doc["_id"] = id
	doc["createdAt"] = now
	doc["updatedAt"] = now

	c.items[id] = doc
	c.order = append(c.order, id)
	return maps.Clone(doc)
}

func (c *collection) Get(id string) (item, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	doc, ok := c.items[id]
	return maps.Clone(doc), ok
}

// Update merges fields into the document. _id and createdAt are kept.
func (c *collection) Update(id string, fields item) (item, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	doc, ok := c.items[id]
	if !ok {
		return nil, false
	}
	c.mergeLocked(doc, fields)
	return maps.Clone(doc), true
}

// Mutate runs fn on the stored document under the collection lock.
func (c *collection) Mutate(id string, fn func(doc item)) (item, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	doc, ok := c.items[id]
	if !ok {
		return nil, false
	}
	fn(doc)
	doc["updatedAt"] = c.now().UTC().Format(time.RFC3339)
	return maps.Clone(doc), true
}

func (c *collection) mergeLocked(doc, fields item) {
	for k, v := range fields {
		if k == "_id" || k == "createdAt" {
			continue
		}
		doc[k] = v
	}
	doc["updatedAt"] = c.now().UTC().Format(time.RFC3339)
}

func (c *collection) Delete(id string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, ok := c.items[id]; !ok {
		return false
	}
	c.deleteLocked(id)
	return true
}

func (c *collection) deleteLocked(id string) {
	delete(c.items, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// UpdateWhere merges fields into every document matching match and returns the count.
func (c *collection) UpdateWhere(match func(item) bool, fields item) int {
	c.lock.Lock()
	defer c.lock.Unlock()
	n := 0
	for _, id := range c.order {
		if doc := c.items[id]; match(doc) {
			c.mergeLocked(doc, fields)
			n++
		}
	}
	return n
}

func (c *collection) DeleteWhere(match func(item) bool) int {
	c.lock.Lock()
	defer c.lock.Unlock()
	var doomed []string
	for _, id := range c.order {
		if match(c.items[id]) {
			doomed = append(doomed, id)
		}
	}
	for _, id := range doomed {
		c.deleteLocked(id)
	}
	return len(doomed)
}

func (c *collection) Count(match func(item) bool) int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	n := 0
	for _, id := range c.order {
		if match == nil || match(c.items[id]) {
			n++
		}
	}
	return n
}

// List filters on exact field matches from the query and pages with page/limit.
func (c *collection) List(query url.Values) []item {
	c.lock.RLock()
	defer c.lock.RUnlock()

	out := make([]item, 0, len(c.order))
	for _, id := range c.order {
		doc := c.items[id]
		if matches(doc, query) {
			out = append(out, maps.Clone(doc))
		}
	}

	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		return out
	}
	page, _ := strconv.Atoi(query.Get("page"))
	page = max(page, 1)
	start := min((page-1)*limit, len(out))
	end := min(start+limit, len(out))
	return out[start:end]
}

func matches(doc item, query url.Values) bool {
	for k, vs := range query {
		if k == "page" || k == "limit" || k == "sort" || len(vs) == 0 {
			continue
		}
		if fmt.Sprint(doc[k]) != vs[0] {
			return false
		}
	}
	return true
}

func isRead(doc item) bool {
	read, _ := doc["read"].(bool)
	return read
}
