// Package model defines the shared value types of the segmentation core:
// catalog descriptors, search candidates, record matrices and segments.
//
// All types in this package are plain data. They carry no behavior beyond
// validation and formatting, so that the catalog, rank and cluster packages
// can exchange them without depending on each other.
package model
