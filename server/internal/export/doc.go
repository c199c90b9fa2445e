// Package export writes the oxygen reference table as an XLSX workbook.
package export
