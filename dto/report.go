package dto

import "time"

// Record is one daily revenue sheet reduced to its six ledger fields.
// Values stay strings: OCR keeps thousands/decimal separators inconsistently,
// so amounts are cleaned but never parsed. A field that was not found is "".
type Record struct {
	Ngay string `json:"ngay"`
	NOW  string `json:"now"`
	Be   string `json:"be"`
	GRAB string `json:"grab"`
	MOMO string `json:"momo"`
	Ca   string `json:"ca"`
}

// IsEmpty reports whether no field was extracted.
func (r Record) IsEmpty() bool {
	return r.Ngay == "" && r.NOW == "" && r.Be == "" && r.GRAB == "" && r.MOMO == "" && r.Ca == ""
}

// FileFailure describes an upload whose OCR failed while the rest of the batch
// carried on.
type FileFailure struct {
	// Index is the position of the failed file's empty row in
	// ResultSet.Records, not in the upload list: skipped empty uploads have
	// no row.
	Index    int    `json:"index"`
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// ResultSet is the ordered output of one upload batch, handed from the
// recognize step to the export step by its ID.
type ResultSet struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Records   []Record      `json:"records"`
	Failures  []FileFailure `json:"failures,omitempty"`
}
