package types

type StandardizeResult struct {
	InputFile      string
	OutputFile     string
	Columns        []string
	RenamedColumns []string
	AddedColumn    string
	Overwritten    bool
	RowsProcessed  int
}

type PartitionFile struct {
	Value string
	Path  string
	Rows  int
}

type PartitionResult struct {
	InputFile   string
	OutputDir   string
	KeyColumn   string
	Files       []PartitionFile
	SkippedRows int
}
