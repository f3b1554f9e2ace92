package audit

// Collector groups records by subject. Each subject gets its own accumulator,
// so records from different subjects never interleave, and subjects are
// remembered in the order they were first seen.
type Collector struct {
	order     []string
	bySubject map[string][]ObservedRecord
}

func NewCollector() *Collector {
	return &Collector{
		bySubject: make(map[string][]ObservedRecord),
	}
}

// Touch registers a subject even if it never yields a record, so that it
// still gets a summary.
func (c *Collector) Touch(subjectID string) {
	if _, exists := c.bySubject[subjectID]; exists {
		return
	}

	c.order = append(c.order, subjectID)
	c.bySubject[subjectID] = nil
}

// Add appends a record to its subject. Excluded records are dropped and Add
// reports false.
func (c *Collector) Add(r ObservedRecord) bool {
	c.Touch(r.SubjectID)

	if r.Excluded() {
		return false
	}

	c.bySubject[r.SubjectID] = append(c.bySubject[r.SubjectID], r)
	return true
}

// Subjects lists subject IDs in first-seen order.
func (c *Collector) Subjects() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

func (c *Collector) Records(subjectID string) []ObservedRecord {
	recs := c.bySubject[subjectID]
	out := make([]ObservedRecord, len(recs))
	copy(out, recs)
	return out
}

// All returns every record, subject by subject, in insertion order.
func (c *Collector) All() []ObservedRecord {
	var out []ObservedRecord
	for _, id := range c.order {
		out = append(out, c.bySubject[id]...)
	}
	return out
}

// Summaries reconciles every subject against the catalog.
func (c *Collector) Summaries(cat Catalog) []SubjectSummary {
	out := make([]SubjectSummary, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Reconcile(cat, id, c.bySubject[id]))
	}
	return out
}
