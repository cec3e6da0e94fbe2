package seoul

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/subway-facility-dashboard/internal/domain"
)

// Result codes returned in the RESULT block.
const (
	CodeOK     = "INFO-000"
	CodeNoData = "INFO-200"
)

// APIError is a non-success RESULT code reported by the upstream.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("seoul API error %s: %s", e.Code, e.Message)
}

// page is one decoded response envelope.
type page struct {
	Total    int
	HasTotal bool
	Code     string
	Message  string
	Columns  []string
	Rows     []domain.Record
}

// err converts the page's RESULT code into an error, if any.
func (p page) err() error {
	switch p.Code {
	case "", CodeOK, CodeNoData:
	default:
		return &APIError{Code: p.Code, Message: p.Message}
	}
	if !p.HasTotal && p.Code != CodeNoData {
		return errors.New("response has no list_total_count")
	}
	return nil
}

type resultElement struct {
	Code    string `xml:"CODE"`
	Message string `xml:"MESSAGE"`
}

// decodePage reads one XML envelope:
//
//	<SeoulMetroFaciInfo>
//	  <list_total_count>2867</list_total_count>
//	  <RESULT><CODE>INFO-000</CODE><MESSAGE>정상 처리되었습니다</MESSAGE></RESULT>
//	  <row><STN_NM>신촌</STN_NM>...</row>
//	  ...
//	</SeoulMetroFaciInfo>
//
// Error responses use RESULT itself as the root element.
func decodePage(r io.Reader) (page, error) {
	dec := xml.NewDecoder(r)

	root, err := nextStart(dec)
	if err != nil {
		return page{}, fmt.Errorf("decode envelope: %w", err)
	}

	var p page
	if root.Name.Local == "RESULT" {
		var res resultElement
		if err := dec.DecodeElement(&res, &root); err != nil {
			return page{}, fmt.Errorf("decode RESULT: %w", err)
		}
		p.Code, p.Message = strings.TrimSpace(res.Code), strings.TrimSpace(res.Message)
		return p, nil
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return page{}, fmt.Errorf("decode %s: %w", root.Name.Local, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := p.decodeChild(dec, t); err != nil {
				return page{}, err
			}
		case xml.EndElement:
			return p, nil
		}
	}
}

func (p *page) decodeChild(dec *xml.Decoder, start xml.StartElement) error {
	switch start.Name.Local {
	case "list_total_count":
		var s string
		if err := dec.DecodeElement(&s, &start); err != nil {
			return fmt.Errorf("decode list_total_count: %w", err)
		}
		total, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("parse list_total_count %q: %w", s, err)
		}
		p.Total, p.HasTotal = total, true
	case "RESULT":
		var res resultElement
		if err := dec.DecodeElement(&res, &start); err != nil {
			return fmt.Errorf("decode RESULT: %w", err)
		}
		p.Code, p.Message = strings.TrimSpace(res.Code), strings.TrimSpace(res.Message)
	case "row":
		rec, cols, err := decodeRow(dec)
		if err != nil {
			return err
		}
		for _, c := range cols {
			if !slices.Contains(p.Columns, c) {
				p.Columns = append(p.Columns, c)
			}
		}
		p.Rows = append(p.Rows, rec)
	default:
		return dec.Skip()
	}
	return nil
}

// decodeRow reads the fields of a <row> after its start tag. Column order is
// document order.
func decodeRow(dec *xml.Decoder) (domain.Record, []string, error) {
	rec := domain.Record{}
	var cols []string
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("decode row: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := dec.DecodeElement(&v, &t); err != nil {
				return nil, nil, fmt.Errorf("decode row field %s: %w", t.Name.Local, err)
			}
			name := t.Name.Local
			if _, dup := rec[name]; !dup {
				cols = append(cols, name)
			}
			rec[name] = strings.TrimSpace(v)
		case xml.EndElement:
			return rec, cols, nil
		}
	}
}

func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return xml.StartElement{}, errors.New("empty document")
			}
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}
