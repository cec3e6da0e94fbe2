package domain

import (
	"slices"
	"time"
)

// Dataset identifies one of the four upstream facility datasets.
type Dataset string

const (
	DatasetClosures  Dataset = "closures"
	DatasetStatus    Dataset = "status"
	DatasetLength    Dataset = "length"
	DatasetAmenities Dataset = "amenities"
)

// Datasets lists every dataset in load and render order.
var Datasets = []Dataset{DatasetClosures, DatasetStatus, DatasetLength, DatasetAmenities}

// Station-name columns. Each dataset uses one of these.
const (
	ColumnStationName       = "STN_NM"
	ColumnSubwayStationName = "SBWY_STNS_NM"
	ColumnStationNameEN     = "STATION_NAME"
)

// StationNameColumns is the set of columns scanned when building a NameMap.
var StationNameColumns = []string{ColumnStationName, ColumnSubwayStationName, ColumnStationNameEN}

// Endpoint returns the upstream service name for the dataset.
func (d Dataset) Endpoint() string {
	switch d {
	case DatasetClosures:
		return "TbSubwayLineDetail"
	case DatasetStatus:
		return "SeoulMetroFaciInfo"
	case DatasetLength:
		return "SmrtScnFcltsInfo"
	case DatasetAmenities:
		return "TbSeoulmetroStConve"
	}
	return ""
}

// NameColumn returns the column holding the station name in this dataset.
func (d Dataset) NameColumn() string {
	switch d {
	case DatasetClosures, DatasetLength:
		return ColumnSubwayStationName
	case DatasetStatus:
		return ColumnStationName
	case DatasetAmenities:
		return ColumnStationNameEN
	}
	return ""
}

// Record is one upstream row keyed by column name.
type Record map[string]string

// Table is the flattened content of one dataset.
type Table struct {
	Dataset  Dataset
	Endpoint string
	Columns  []string // first-seen order across rows
	Rows     []Record
}

// HasColumn reports whether any row carried the named column.
func (t Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// Append adds rows and merges their columns into the column list.
func (t *Table) Append(columns []string, rows []Record) {
	for _, c := range columns {
		if !t.HasColumn(c) {
			t.Columns = append(t.Columns, c)
		}
	}
	t.Rows = append(t.Rows, rows...)
}

// Bundle holds one snapshot of all four datasets.
type Bundle struct {
	Closures  Table
	Status    Table
	Length    Table
	Amenities Table
	FetchedAt time.Time
}

// Tables returns the four tables in dataset order.
func (b Bundle) Tables() []Table {
	return []Table{b.Closures, b.Status, b.Length, b.Amenities}
}

// Table returns the table for d.
func (b Bundle) Table(d Dataset) Table {
	switch d {
	case DatasetClosures:
		return b.Closures
	case DatasetStatus:
		return b.Status
	case DatasetLength:
		return b.Length
	case DatasetAmenities:
		return b.Amenities
	}
	return Table{}
}

// Set stores t under its Dataset.
func (b *Bundle) Set(t Table) {
	switch t.Dataset {
	case DatasetClosures:
		b.Closures = t
	case DatasetStatus:
		b.Status = t
	case DatasetLength:
		b.Length = t
	case DatasetAmenities:
		b.Amenities = t
	}
}

// RefreshSummary describes a completed bundle refresh.
type RefreshSummary struct {
	FetchedAt time.Time        `json:"fetched_at"`
	Datasets  []DatasetSummary `json:"datasets"`
}

// DatasetSummary is the per-dataset part of a RefreshSummary.
type DatasetSummary struct {
	Dataset  Dataset `json:"dataset"`
	Endpoint string  `json:"endpoint"`
	Rows     int     `json:"rows"`
}

// Summarize builds a RefreshSummary for b.
func (b Bundle) Summarize() RefreshSummary {
	s := RefreshSummary{FetchedAt: b.FetchedAt}
	for _, t := range b.Tables() {
		s.Datasets = append(s.Datasets, DatasetSummary{
			Dataset:  t.Dataset,
			Endpoint: t.Endpoint,
			Rows:     len(t.Rows),
		})
	}
	return s
}
