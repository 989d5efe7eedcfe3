package utils

import (
	"database/sql"

	"github.com/go-gota/gota/dataframe"
)

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

// GetStr reads a text cell. Missing columns and NaN cells are absent.
func GetStr(col string, rowIdx int, df *dataframe.DataFrame) sql.NullString {
	if df == nil || !containsString(df.Names(), col) {
		return sql.NullString{}
	}

	elem := df.Col(col).Elem(rowIdx)
	if elem.IsNA() {
		return sql.NullString{}
	}
	return sql.NullString{String: elem.String(), Valid: true}
}

// GetInt reads an integer cell. Missing columns, NaN cells and values that
// do not parse are absent.
func GetInt(col string, rowIdx int, df *dataframe.DataFrame) sql.NullInt64 {
	if df == nil || !containsString(df.Names(), col) {
		return sql.NullInt64{}
	}

	elem := df.Col(col).Elem(rowIdx)
	if elem.IsNA() {
		return sql.NullInt64{}
	}
	val, err := elem.Int()
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(val), Valid: true}
}
