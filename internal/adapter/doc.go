// Package adapter reads tables from files and writes them back.
//
// Every supported file type implements Format. ForPath selects the format
// from the file extension: .csv, .xlsx, .parquet and the SQLite extensions
// .db, .sqlite and .sqlite3. Writes go through a temporary file in the
// destination directory and replace the target only on success.
package adapter
