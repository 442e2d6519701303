package homepage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
)

// Mapper converts a bookmarks config into import items.
type Mapper struct{}

// NewMapper creates a new bookmark mapper
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapBookmarks flattens config into import items, one per bookmark.
// The category becomes the folder name and the bookmark name the title.
// Bookmarks without an href are skipped.
func (m *Mapper) MapBookmarks(config BookmarksConfig) ([]domain.ImportItem, error) {
	items := make([]domain.ImportItem, 0)

	for _, category := range config {
		for _, categoryName := range sortedKeys(category) {
			for _, bookmarkMap := range category[categoryName] {
				for _, bookmarkName := range sortedKeys(bookmarkMap) {
					entryList := bookmarkMap[bookmarkName]
					// Each bookmark has a list with a single entry
					if len(entryList) == 0 {
						continue
					}
					entry := entryList[0]

					href := strings.TrimSpace(entry.Href)
					if href == "" {
						continue
					}

					title := bookmarkName
					if title == "" {
						title = entry.Abbr
					}

					items = append(items, domain.ImportItem{
						FolderName: strings.TrimSpace(categoryName),
						Title:      title,
						URL:        href,
						Tags:       entry.Tags,
						Memo:       entry.Description,
					})
				}
			}
		}
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid bookmarks found in config")
	}

	return items, nil
}

// sortedKeys keeps the output stable when a YAML mapping holds several keys.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadItems reads path and maps it in one step.
func LoadItems(path string) ([]domain.ImportItem, error) {
	config, err := NewLoader(path).Load()
	if err != nil {
		return nil, err
	}
	return NewMapper().MapBookmarks(config)
}
