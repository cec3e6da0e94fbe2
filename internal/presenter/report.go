// Package presenter turns a resolved query and a dataset bundle into the four
// report sections shown to the user, and renders them as HTML.
package presenter

import (
	"strings"

	"github.com/couchcryptid/subway-facility-dashboard/internal/domain"
)

// Level is the severity of a Notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// User-facing texts.
const (
	TitleClosures  = "🔒 출입구·휠체어리프트 임시 폐쇄"
	TitleStatus    = "⚠️ 승강기·에스컬레이터 가동"
	TitleLength    = "📏 승강기·에스컬레이터 길이"
	TitleAmenities = "🛗 편의시설"

	BannerPrefix       = "대상 역: "
	TextNotFound       = "❌ 해당 역 데이터가 없습니다."
	TextNoClosures     = "폐쇄 정보 없음"
	TextNoData         = "정보 없음"
	TextOutOfService   = "🚫 작동 중지 시설"
	TextAllOperational = "🟢 모든 시설 정상 작동"
	TextAvailable      = "✔️ 이용 가능: "
	TextNoAmenities    = "❌ 이용 가능 시설 없음"
)

// StatusUsable is the USE_YN value of equipment in service.
const StatusUsable = "사용가능"

// Columns shown per section.
var (
	ClosureColumns = []string{"CLSG_PLC", "BGNG_YMD", "END_YMD", "RPLC_PATH"}
	StatusColumns  = []string{"ELVTR_NM", "OPR_SEC", "INSTL_PSTN", "USE_YN"}
	LengthColumns  = []string{"EQPMNT", "NO", "PLF_PBADMS", "OPR_SEC"}
)

const (
	columnUseYN  = "USE_YN"
	columnLength = "PLF_PBADMS"
)

// Notice is a one-line message inside a section.
type Notice struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Grid is a rectangular table of display values.
type Grid struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Section is one of the four report blocks. A section whose dataset lacks its
// station-name column is Skipped and carries no content.
type Section struct {
	Dataset   domain.Dataset `json:"dataset"`
	Title     string         `json:"title"`
	Skipped   bool           `json:"skipped,omitempty"`
	Notice    *Notice        `json:"notice,omitempty"`
	Grid      *Grid          `json:"grid,omitempty"`
	Amenities []string       `json:"amenities,omitempty"`
}

// Report is the full answer to one query.
type Report struct {
	Resolution domain.Resolution `json:"resolution"`
	Banner     string            `json:"banner,omitempty"`
	Error      *Notice           `json:"error,omitempty"`
	Sections   []Section         `json:"sections"`
}

// Found reports whether the query matched any station.
func (r Report) Found() bool {
	return r.Resolution.Found()
}

// BuildReport filters every table in b by the resolved targets and builds the
// four sections. An unresolved query yields only the not-found error.
func BuildReport(b domain.Bundle, res domain.Resolution) Report {
	if !res.Found() {
		return Report{
			Resolution: res,
			Error:      &Notice{Level: LevelError, Text: TextNotFound},
			Sections:   []Section{},
		}
	}

	targets := make(map[string]struct{}, len(res.Targets))
	for _, t := range res.Targets {
		targets[t] = struct{}{}
	}

	return Report{
		Resolution: res,
		Banner:     BannerPrefix + strings.Join(res.Targets, ", "),
		Sections: []Section{
			closuresSection(b.Closures, targets),
			statusSection(b.Status, targets),
			lengthSection(b.Length, targets),
			amenitiesSection(b.Amenities, targets),
		},
	}
}

// FilterRows returns the rows of t whose value in column is one of targets.
// The second result is false when t has no such column.
func FilterRows(t domain.Table, column string, targets map[string]struct{}) ([]domain.Record, bool) {
	if !t.HasColumn(column) {
		return nil, false
	}
	var out []domain.Record
	for _, r := range t.Rows {
		if _, ok := targets[r[column]]; ok {
			out = append(out, r)
		}
	}
	return out, true
}

func closuresSection(t domain.Table, targets map[string]struct{}) Section {
	s := Section{Dataset: domain.DatasetClosures, Title: TitleClosures}
	rows, ok := FilterRows(t, domain.DatasetClosures.NameColumn(), targets)
	switch {
	case !ok:
		s.Skipped = true
	case len(rows) == 0:
		s.Notice = &Notice{Level: LevelInfo, Text: TextNoClosures}
	default:
		s.Grid = project(rows, ClosureColumns, nil)
	}
	return s
}

func statusSection(t domain.Table, targets map[string]struct{}) Section {
	s := Section{Dataset: domain.DatasetStatus, Title: TitleStatus}
	rows, ok := FilterRows(t, domain.DatasetStatus.NameColumn(), targets)
	if !ok {
		s.Skipped = true
		return s
	}
	if len(rows) == 0 {
		s.Notice = &Notice{Level: LevelInfo, Text: TextNoData}
		return s
	}

	var down []domain.Record
	for _, r := range rows {
		if r[columnUseYN] != StatusUsable {
			down = append(down, r)
		}
	}
	if len(down) == 0 {
		s.Notice = &Notice{Level: LevelSuccess, Text: TextAllOperational}
		return s
	}
	s.Notice = &Notice{Level: LevelWarning, Text: TextOutOfService}
	s.Grid = project(down, StatusColumns, nil)
	return s
}

func lengthSection(t domain.Table, targets map[string]struct{}) Section {
	s := Section{Dataset: domain.DatasetLength, Title: TitleLength}
	rows, ok := FilterRows(t, domain.DatasetLength.NameColumn(), targets)
	switch {
	case !ok:
		s.Skipped = true
	case len(rows) == 0:
		s.Notice = &Notice{Level: LevelInfo, Text: TextNoData}
	default:
		s.Grid = project(rows, LengthColumns, map[string]func(string) string{
			columnLength: FormatLength,
		})
	}
	return s
}

func amenitiesSection(t domain.Table, targets map[string]struct{}) Section {
	s := Section{Dataset: domain.DatasetAmenities, Title: TitleAmenities}
	rows, ok := FilterRows(t, domain.DatasetAmenities.NameColumn(), targets)
	switch {
	case !ok:
		s.Skipped = true
	case len(rows) == 0:
		s.Notice = &Notice{Level: LevelInfo, Text: TextNoData}
	default:
		// The first matching row stands for the whole station.
		s.Amenities = AvailableAmenities(rows[0])
		if len(s.Amenities) > 0 {
			s.Notice = &Notice{Level: LevelSuccess, Text: TextAvailable + strings.Join(s.Amenities, ", ")}
		} else {
			s.Notice = &Notice{Level: LevelInfo, Text: TextNoAmenities}
		}
	}
	return s
}

// project picks columns from rows, applying an optional per-column formatter.
// Absent values render as empty strings.
func project(rows []domain.Record, columns []string, format map[string]func(string) string) *Grid {
	g := &Grid{Columns: columns, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		line := make([]string, len(columns))
		for i, c := range columns {
			v := r[c]
			if f, ok := format[c]; ok {
				v = f(v)
			}
			line[i] = v
		}
		g.Rows = append(g.Rows, line)
	}
	return g
}
