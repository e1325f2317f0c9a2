package storage

import (
	_ "embed"
)

const (
	insertSurveySQL = `
INSERT INTO surveys (
                     created_at,
                     title,
                     floor_plan,
                     config)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?)`

	selectSurveySQL = `
SELECT
    s.id,
    s.created_at,
    s.title,
    s.floor_plan,
    s.config,
    COUNT(DISTINCT r.row_index)
FROM surveys s
LEFT JOIN records r ON r.survey_id = s.id
WHERE
    s.id = ?
GROUP BY s.id`

	selectSurveysSQL = `
SELECT
    s.id,
    s.created_at,
    s.title,
    s.floor_plan,
    s.config,
    COUNT(DISTINCT r.row_index)
FROM surveys s
LEFT JOIN records r ON r.survey_id = s.id
GROUP BY s.id
ORDER BY s.created_at, s.id`

	insertRecordSQL = `
INSERT INTO records (survey_id,
                     row_index,
                     field,
                     value)
VALUES `

	selectRecordsSQL = `
SELECT
    row_index,
    field,
    value
FROM records
WHERE
    survey_id = ?
ORDER BY row_index, field`

	nextRowIndexSQL = `SELECT COALESCE(MAX(row_index) + 1, 0) FROM records WHERE survey_id = ?`

	deleteSurveySQL = `DELETE FROM surveys WHERE id = ?`

	// sqlite limits the number of bound parameters per statement
	maxRecordBatch = 200
)

//go:embed schema.sql
var initSchemaSQL string
