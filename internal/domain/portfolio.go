package domain

import "cryptoTA/internal/utils"

// Portfolio is a view over several trading sessions. It keeps references to
// its records, in insertion order and without deduplication, and never
// copies their trades.
type Portfolio struct {
	records []*TradingRecord
}

// NewPortfolio groups records. Nil records are skipped.
func NewPortfolio(records ...*TradingRecord) *Portfolio {
	p := &Portfolio{records: make([]*TradingRecord, 0, len(records))}
	for _, r := range records {
		p.Add(r)
	}
	return p
}

// Add appends a record. A nil record is ignored.
func (p *Portfolio) Add(record *TradingRecord) {
	if record == nil {
		return
	}
	p.records = append(p.records, record)
}

// Records returns a copy of the member list; the records themselves are shared.
func (p *Portfolio) Records() []*TradingRecord {
	out := make([]*TradingRecord, len(p.records))
	copy(out, p.records)
	return out
}

// Iterator walks the closed trades of every record, record by record. Member
// iterators are pulled on demand; the result is single pass.
func (p *Portfolio) Iterator() utils.Iterator[*Trade] {
	it := utils.NewExtendableIterator[*Trade]()
	for _, r := range p.records {
		it.Extend(r.Iterator())
	}
	return it
}

// OpenTrades yields the open trade of each record that has one, in record order.
func (p *Portfolio) OpenTrades() utils.Iterator[*Trade] {
	it := utils.NewExtendableIterator[*Trade]()
	for _, r := range p.records {
		it.Extend(r.OpenTrades())
	}
	return it
}

// TradeCount sums the closed trades of every record.
func (p *Portfolio) TradeCount() int {
	total := 0
	for _, r := range p.records {
		total += r.TradeCount()
	}
	return total
}
