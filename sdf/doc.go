// Package sdf reads and writes Structure-Data Files.
//
// An SDF file is a sequence of records. Each record is a molfile closed by
// the "M  END" line, followed by optional data fields
//
//	> <MW>
//	180.16
//
// and terminated by a "$$$$" line. A plain MOL file is read as one record.
// Everything in this package is a pure function of its input.
package sdf
