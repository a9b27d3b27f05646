package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/json"

	"cpuleaf/internal/table"
)

// createJsonReport keys the report by table name. Tables in row form become
// an array of records, the others a single record. A table without data is
// null.
func createJsonReport(allTableValues []table.TableValues) (out []byte, err error) {
	type record map[string]string
	report := make(map[string]any)
	for _, tableValues := range allTableValues {
		if len(tableValues.Fields) == 0 || len(tableValues.Fields[0].Values) == 0 {
			report[tableValues.Name] = nil
			continue
		}
		if !tableValues.HasRows {
			r := make(record)
			for _, field := range tableValues.Fields {
				r[field.Name] = field.Values[0]
			}
			report[tableValues.Name] = r
			continue
		}
		var records []record
		for row := range len(tableValues.Fields[0].Values) {
			r := make(record)
			for _, field := range tableValues.Fields {
				r[field.Name] = field.Values[row]
			}
			records = append(records, r)
		}
		report[tableValues.Name] = records
	}
	return json.MarshalIndent(report, "", " ")
}
