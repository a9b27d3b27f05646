// Package report provides functions to generate reports in various formats such as txt, json, xlsx.
package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strings"

	"cpuleaf/internal/table"
	"cpuleaf/internal/translate"
)

const (
	FormatXlsx = "xlsx"
	FormatJson = "json"
	FormatTxt  = "txt"
)

const NoDataFound = "No data found."

var FormatOptions = []string{FormatTxt, FormatJson, FormatXlsx}

// Create generates a report in the specified format from the evaluated tables.
// The function ensures that all fields have the same number of values before generating the report.
// Insights collected from the tables are appended as a final table.
// The txt and xlsx formats are localized; json is not.
//
// Parameters:
// - format: The desired format of the report (txt, json, xlsx).
// - allTableValues: The values for each field in each table.
//
// Returns:
// - out: The generated report as a byte slice.
// - err: An error, if any occurred during report generation.
func Create(format string, allTableValues []table.TableValues) (out []byte, err error) {
	// make sure that all fields have the same number of values
	for _, tableValue := range allTableValues {
		numRows := -1
		for _, fieldValues := range tableValue.Fields {
			if numRows == -1 {
				numRows = len(fieldValues.Values)
				continue
			}
			if len(fieldValues.Values) != numRows {
				return nil, fmt.Errorf("expected %d value(s) for field, found %d", numRows, len(fieldValues.Values))
			}
		}
	}
	if insights := insightsTable(allTableValues); len(insights.Fields[0].Values) > 0 {
		allTableValues = append(allTableValues, insights)
	}
	// create the report based on the specified format
	switch format {
	case FormatTxt:
		return createTextReport(allTableValues)
	case FormatJson:
		return createJsonReport(allTableValues)
	case FormatXlsx:
		return createXlsxReport(allTableValues)
	}
	return nil, fmt.Errorf("expected one of %s, got %s", strings.Join(FormatOptions, ", "), format)
}

// insightsTable gathers the insights of every table into a single table.
func insightsTable(allTableValues []table.TableValues) table.TableValues {
	insights := table.TableValues{
		TableDefinition: table.TableDefinition{
			Name:    table.InsightsTableName,
			HasRows: true,
		},
		Fields: []table.Field{
			{Name: "Recommendation"},
			{Name: "Justification"},
		},
	}
	for _, tableValues := range allTableValues {
		for _, insight := range tableValues.Insights {
			insights.Fields[0].Values = append(insights.Fields[0].Values, insight.Recommendation)
			insights.Fields[1].Values = append(insights.Fields[1].Values, insight.Justification)
		}
	}
	return insights
}

// localize translates a table or field label, or a value that is itself a
// label. Strings holding format verbs are returned unchanged.
func localize(s string) string {
	if s == "" || strings.Contains(s, "%") {
		return s
	}
	return translate.From(s)
}
