package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"cpuleaf/internal/table"
)

func createTextReport(allTableValues []table.TableValues) (out []byte, err error) {
	var sb strings.Builder
	for _, tableValues := range allTableValues {
		name := localize(tableValues.Name)
		sb.WriteString(fmt.Sprintf("%s\n", name))
		sb.WriteString(strings.Repeat("=", utf8.RuneCountInString(name)))
		sb.WriteString("\n")
		if len(tableValues.Fields) == 0 || len(tableValues.Fields[0].Values) == 0 {
			msg := NoDataFound
			if tableValues.NoDataFound != "" {
				msg = tableValues.NoDataFound
			}
			sb.WriteString(msg + "\n\n")
			continue
		}
		// custom renderer defined?
		if tableValues.TextTableRendererFunc != nil {
			sb.WriteString(tableValues.TextTableRendererFunc(tableValues))
		} else {
			sb.WriteString(DefaultTextTableRendererFunc(tableValues))
		}
		sb.WriteString("\n")
	}
	out = []byte(sb.String())
	return
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func DefaultTextTableRendererFunc(tableValues table.TableValues) string {
	var sb strings.Builder
	if tableValues.HasRows { // print the field names as column headings across the top of the table
		names := make([]string, len(tableValues.Fields))
		rows := make([][]string, len(tableValues.Fields))
		// find the longest item per column -- can be the field name (column header) or a value
		widths := make([]int, len(tableValues.Fields))
		for i, field := range tableValues.Fields {
			names[i] = localize(field.Name)
			rows[i] = make([]string, len(field.Values))
			for j, val := range field.Values {
				rows[i][j] = localize(val)
			}
			// the last column shouldn't occupy more space than the value
			if i == len(tableValues.Fields)-1 {
				continue
			}
			widths[i] = utf8.RuneCountInString(names[i])
			for _, val := range rows[i] {
				widths[i] = max(widths[i], utf8.RuneCountInString(val))
			}
		}
		columnSpacing := 3
		// print the field names
		var line strings.Builder
		for i, name := range names {
			line.WriteString(padRight(name, widths[i]+columnSpacing))
		}
		sb.WriteString(strings.TrimRight(line.String(), " ") + "\n")
		// underline the field names
		line.Reset()
		for i, name := range names {
			line.WriteString(padRight(strings.Repeat("-", utf8.RuneCountInString(name)), widths[i]+columnSpacing))
		}
		sb.WriteString(strings.TrimRight(line.String(), " ") + "\n")
		// print the rows
		numRows := len(tableValues.Fields[0].Values)
		for row := range numRows {
			line.Reset()
			for i := range rows {
				line.WriteString(padRight(rows[i][row], widths[i]+columnSpacing))
			}
			sb.WriteString(strings.TrimRight(line.String(), " ") + "\n")
		}
	} else {
		// get the longest field name to format the table nicely
		maxFieldNameLen := 0
		for _, field := range tableValues.Fields {
			maxFieldNameLen = max(maxFieldNameLen, utf8.RuneCountInString(localize(field.Name)))
		}
		// print the field names followed by their value
		for _, field := range tableValues.Fields {
			var value string
			if len(field.Values) > 0 {
				value = localize(field.Values[0])
			}
			name := localize(field.Name)
			sb.WriteString(fmt.Sprintf("%s%s %s\n", name, padRight(":", maxFieldNameLen-utf8.RuneCountInString(name)+1), value))
		}
	}
	return sb.String()
}
