package domain

// ImportItem is one link read from an external bookmark source.
type ImportItem struct {
	// FolderName is the folder the link should be filed into ("" = unfiled).
	FolderName string
	Title      string
	URL        string
	Tags       []string
	Memo       string
}
