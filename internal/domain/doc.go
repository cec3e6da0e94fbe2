// Package domain models the Seoul Open Data subway facility datasets and the
// station-name resolution that joins them.
//
// # Data Sources
//
// Four datasets are read from the Seoul Open Data Plaza API
// (http://openapi.seoul.go.kr:8088). Each is addressed by a service name:
//
//	TbSubwayLineDetail   temporary closures of exits and wheelchair lifts
//	SeoulMetroFaciInfo   elevator/escalator operating status
//	SmrtScnFcltsInfo     elevator/escalator length
//	TbSeoulmetroStConve  station amenities
//
// Rows are flat: every child element of a <row> becomes one column. Column
// names are upper-case codes chosen independently per dataset, so the station
// name lives under STN_NM, SBWY_STNS_NM or STATION_NAME depending on the source.
//
// # Station Naming
//
// The four sources spell the same station differently. Common variants:
//
//	"신촌"            plain name
//	"신촌역"          with the 역 ("station") suffix
//	"신촌(2호선)"     with a bracketed line annotation
//	"신촌(경의중앙선)" with a bracketed operator/line name
//
// [NormalizeStationName] strips bracketed spans and every 역 character, then
// trims whitespace. The removal is not anchored to the end of the name, so a
// station whose name contains 역 elsewhere loses that character too; the key
// space stays consistent because queries go through the same function.
// Distinct real stations may collide on one key; that is accepted.
//
// # Resolution
//
// A [NameMap] is derived from a [Bundle] for every query and discarded after
// it. [Resolve] looks the normalized query up directly and otherwise falls back
// to the single most similar key (difflib SequenceMatcher ratio, cutoff 0.4).
// An empty [Resolution] means "station not found" and is not an error.
//
// # Facility Flags
//
// Operating status uses the literal "사용가능" for usable equipment; any other
// value is treated as out of service. Amenity columns hold "Y" when present.
// Lengths (PLF_PBADMS) are millimetres encoded as digit strings.
package domain
