package domain

// Buckets maps topic names to ordered article lists and remembers the order in
// which topics were first added.
type Buckets struct {
	order []string
	items map[string][]Article
}

// NewBuckets returns empty buckets with the given topics pre-registered in order.
func NewBuckets(topics ...string) *Buckets {
	b := &Buckets{items: make(map[string][]Article, len(topics))}
	for _, t := range topics {
		b.register(t)
	}
	return b
}

func (b *Buckets) register(topic string) {
	if b.items == nil {
		b.items = map[string][]Article{}
	}
	if _, ok := b.items[topic]; ok {
		return
	}
	b.order = append(b.order, topic)
	b.items[topic] = nil
}

// Append adds an article to the end of a topic list.
func (b *Buckets) Append(topic string, article Article) {
	b.register(topic)
	b.items[topic] = append(b.items[topic], article)
}

// Topics returns topic names in insertion order, including empty ones.
func (b *Buckets) Topics() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Articles returns the articles stored under topic.
func (b *Buckets) Articles(topic string) []Article {
	if b == nil {
		return nil
	}
	return b.items[topic]
}

// Len reports the number of non-empty topics.
func (b *Buckets) Len() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, t := range b.order {
		if len(b.items[t]) > 0 {
			n++
		}
	}
	return n
}

// Total reports the number of (topic, article) entries.
func (b *Buckets) Total() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, t := range b.order {
		n += len(b.items[t])
	}
	return n
}

// Pruned returns a copy without empty topics.
func (b *Buckets) Pruned() *Buckets {
	out := NewBuckets()
	if b == nil {
		return out
	}
	for _, t := range b.order {
		for _, a := range b.items[t] {
			out.Append(t, a)
		}
	}
	return out
}

// Capped returns a pruned copy with each topic truncated to at most limit
// articles. A non-positive limit disables capping.
func (b *Buckets) Capped(limit int) *Buckets {
	out := NewBuckets()
	if b == nil {
		return out
	}
	for _, t := range b.order {
		list := b.items[t]
		if limit > 0 && len(list) > limit {
			list = list[:limit]
		}
		for _, a := range list {
			out.Append(t, a)
		}
	}
	return out
}

// IDs returns the distinct non-empty article IDs present, in bucket order.
func (b *Buckets) IDs() []string {
	if b == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var ids []string
	for _, t := range b.order {
		for _, a := range b.items[t] {
			if a.ID == "" {
				continue
			}
			if _, ok := seen[a.ID]; ok {
				continue
			}
			seen[a.ID] = struct{}{}
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// Digest converts the buckets into a digest, using icons keyed by topic name.
func (b *Buckets) Digest(icons map[string]string) []Section {
	if b == nil {
		return nil
	}
	sections := make([]Section, 0, len(b.order))
	for _, t := range b.order {
		list := b.items[t]
		if len(list) == 0 {
			continue
		}
		articles := make([]Article, len(list))
		copy(articles, list)
		sections = append(sections, Section{Topic: t, Icon: icons[t], Articles: articles})
	}
	return sections
}
