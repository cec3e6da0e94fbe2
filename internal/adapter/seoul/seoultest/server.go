// Package seoultest provides an in-process fake of the Seoul Open Data API.
package seoultest

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// MaxRange is the largest row range the upstream accepts per request.
const MaxRange = 1000

// Field is one column of a fixture row.
type Field struct {
	Name  string
	Value string
}

// Row is a fixture row. Field order is preserved in the XML output.
type Row []Field

// R builds a Row from alternating name/value pairs.
func R(pairs ...string) Row {
	row := make(Row, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		row = append(row, Field{Name: pairs[i], Value: pairs[i+1]})
	}
	return row
}

// Request records one page request received by the fake.
type Request struct {
	APIKey   string
	Format   string
	Endpoint string
	Start    int
	End      int
}

// Handler serves fixture tables using the upstream URL layout
// /{key}/{format}/{endpoint}/{start}/{end}/.
type Handler struct {
	apiKey string
	tables map[string][]Row
	mux    *http.ServeMux

	mu       sync.Mutex
	requests []Request
}

// NewHandler creates a fake API that accepts apiKey and serves tables by endpoint.
func NewHandler(apiKey string, tables map[string][]Row) *Handler {
	h := &Handler{apiKey: apiKey, tables: tables, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /{key}/{format}/{endpoint}/{start}/{end}/", h.servePage)
	return h
}

// Requests returns a copy of the requests served so far.
func (h *Handler) Requests() []Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Request(nil), h.requests...)
}

// Reset forgets recorded requests.
func (h *Handler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) servePage(w http.ResponseWriter, r *http.Request) {
	start, errStart := strconv.Atoi(r.PathValue("start"))
	end, errEnd := strconv.Atoi(r.PathValue("end"))
	req := Request{
		APIKey:   r.PathValue("key"),
		Format:   r.PathValue("format"),
		Endpoint: r.PathValue("endpoint"),
		Start:    start,
		End:      end,
	}
	h.mu.Lock()
	h.requests = append(h.requests, req)
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/xml;charset=UTF-8")

	switch {
	case req.APIKey != h.apiKey:
		WriteResult(w, "INFO-100", "인증키가 유효하지 않습니다.")
		return
	case req.Format != "xml":
		WriteResult(w, "ERROR-301", "파일타입 값이 누락 혹은 유효하지 않습니다.")
		return
	case errStart != nil || errEnd != nil || start < 1 || end < start:
		WriteResult(w, "ERROR-331", "요청시작위치 값을 확인하십시오.")
		return
	case end-start+1 > MaxRange:
		WriteResult(w, "ERROR-336", "데이터요청은 한번에 최대 1000건을 넘을 수 없습니다.")
		return
	}

	rows, ok := h.tables[req.Endpoint]
	if !ok {
		WriteResult(w, "ERROR-310", "해당하는 서비스를 찾을 수 없습니다.")
		return
	}
	if len(rows) == 0 || start > len(rows) {
		WriteResult(w, "INFO-200", "해당하는 데이터가 없습니다.")
		return
	}
	WriteEnvelope(w, req.Endpoint, len(rows), rows[start-1:min(end, len(rows))])
}

// Server is a running fake API.
type Server struct {
	*httptest.Server
	Handler *Handler
}

// NewServer starts a fake API server. Close it when done.
func NewServer(apiKey string, tables map[string][]Row) *Server {
	h := NewHandler(apiKey, tables)
	return &Server{Server: httptest.NewServer(h), Handler: h}
}

// WriteEnvelope writes a success envelope for rows of a dataset with total rows.
func WriteEnvelope(w io.Writer, endpoint string, total int, rows []Row) {
	fmt.Fprint(w, xml.Header)
	fmt.Fprintf(w, "<%s>", endpoint)
	fmt.Fprintf(w, "<list_total_count>%d</list_total_count>", total)
	fmt.Fprint(w, "<RESULT><CODE>INFO-000</CODE><MESSAGE>정상 처리되었습니다</MESSAGE></RESULT>")
	for _, row := range rows {
		fmt.Fprint(w, "<row>")
		for _, f := range row {
			fmt.Fprintf(w, "<%s>", f.Name)
			xml.EscapeText(w, []byte(f.Value)) //nolint:errcheck // test fixture writer
			fmt.Fprintf(w, "</%s>", f.Name)
		}
		fmt.Fprint(w, "</row>")
	}
	fmt.Fprintf(w, "</%s>", endpoint)
}

// WriteResult writes an error-shaped response whose root is RESULT.
func WriteResult(w io.Writer, code, message string) {
	fmt.Fprint(w, xml.Header)
	fmt.Fprintf(w, "<RESULT><CODE>%s</CODE><MESSAGE>", code)
	xml.EscapeText(w, []byte(message)) //nolint:errcheck // test fixture writer
	fmt.Fprint(w, "</MESSAGE></RESULT>")
}
