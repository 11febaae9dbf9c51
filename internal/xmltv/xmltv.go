// Package xmltv encodes an electronic programme guide in the XMLTV
// format consumed by IPTV players.
package xmltv

import (
	"encoding/xml"
	"io"
	"time"
)

// timeLayout is the XMLTV timestamp format.
const timeLayout = "20060102150405 -0700"

// TV is the document root.
type TV struct {
	XMLName       xml.Name    `xml:"tv"`
	GeneratorName string      `xml:"generator-info-name,attr,omitempty"`
	Channels      []Channel   `xml:"channel"`
	Programmes    []Programme `xml:"programme"`
}

// Channel describes one guide channel.
type Channel struct {
	ID          string   `xml:"id,attr"`
	DisplayName []string `xml:"display-name"`
	LCN         string   `xml:"lcn,omitempty"`
}

// Programme describes one guide entry.
type Programme struct {
	Start    string   `xml:"start,attr"`
	Stop     string   `xml:"stop,attr"`
	Channel  string   `xml:"channel,attr"`
	Title    string   `xml:"title"`
	Desc     string   `xml:"desc,omitempty"`
	Category []string `xml:"category,omitempty"`
}

// FormatTime renders t in the XMLTV timestamp format.
func FormatTime(t time.Time) string {
	return t.Format(timeLayout)
}

// Encode writes the document with the XML header and indentation.
func (tv *TV) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(tv); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
