// Package common keeps small enumerations shared between engine packages and
// the command line front end.
package common

import (
	"fmt"
	"strings"
)

// Where a dragged element lands relative to the drop target.
// ENUM(before, after, inside)
type DropPosition string

const (
	DropPositionBefore DropPosition = "before"
	DropPositionAfter  DropPosition = "after"
	DropPositionInside DropPosition = "inside"
)

var dropPositionNames = []string{
	string(DropPositionBefore),
	string(DropPositionAfter),
	string(DropPositionInside),
}

// DropPositionNames returns a list of possible string values of DropPosition.
func DropPositionNames() []string {
	return append([]string(nil), dropPositionNames...)
}

func (p DropPosition) String() string {
	return string(p)
}

// IsValid reports whether p is one of the known positions.
func (p DropPosition) IsValid() bool {
	_, err := ParseDropPosition(string(p))
	return err == nil
}

// ParseDropPosition attempts to convert a string to a DropPosition.
func ParseDropPosition(name string) (DropPosition, error) {
	for _, n := range dropPositionNames {
		if strings.EqualFold(n, name) {
			return DropPosition(n), nil
		}
	}
	return "", fmt.Errorf("%s is not a valid DropPosition, try [%s]", name, strings.Join(dropPositionNames, ", "))
}

// Severity of a user facing notification.
// ENUM(success, info, warning, error)
type NotificationType string

const (
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

func (n NotificationType) String() string {
	return string(n)
}

// OutputFmt is requested export type.
// ENUM(html, xhtml, page, css, json)
type OutputFmt int

const (
	OutputFmtHtml OutputFmt = iota
	OutputFmtXhtml
	OutputFmtPage
	OutputFmtCss
	OutputFmtJson
)

var outputFmtNames = []string{"html", "xhtml", "page", "css", "json"}

// OutputFmtNames returns a list of possible string values of OutputFmt.
func OutputFmtNames() []string {
	return append([]string(nil), outputFmtNames...)
}

func (o OutputFmt) String() string {
	if o >= 0 && int(o) < len(outputFmtNames) {
		return outputFmtNames[o]
	}
	return fmt.Sprintf("OutputFmt(%d)", int(o))
}

// ParseOutputFmt attempts to convert a string to an OutputFmt.
func ParseOutputFmt(name string) (OutputFmt, error) {
	for i, n := range outputFmtNames {
		if strings.EqualFold(n, name) {
			return OutputFmt(i), nil
		}
	}
	return OutputFmt(0), fmt.Errorf("%s is not a valid OutputFmt, try [%s]", name, strings.Join(outputFmtNames, ", "))
}

// Ext returns file name extension for exported documents of this format.
func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtHtml, OutputFmtPage:
		return ".html"
	case OutputFmtXhtml:
		return ".xhtml"
	case OutputFmtCss:
		return ".css"
	case OutputFmtJson:
		return ".json"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
