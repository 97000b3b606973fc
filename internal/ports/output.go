package ports

import "tinyprotocol/internal/types"

type TableWriterPort interface {
	WriteTable(path string, table types.MappingTable) error
	WriteLoadReport(path string, report types.LoadReport) error
}

type TableReaderPort interface {
	ReadTable(path string) (types.MappingTable, error)
}

type ReobfWriterPort interface {
	WriteProperties(path string, table types.MappingTable) error
}
