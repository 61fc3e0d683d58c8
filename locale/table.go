package locale

import (
	_ "embed"
	"fmt"
	"io"
	"sort"

	"github.com/creativeprojects/folderfix/lib"
	"github.com/creativeprojects/folderfix/mailbox"
	"gopkg.in/yaml.v3"
)

//go:embed locales.yaml
var embeddedTable []byte

// FolderNames holds the well-known folder display names of one locale,
// along with its date and time formats.
type FolderNames struct {
	Tag        string
	DateFormat string
	TimeFormat string
	names      map[mailbox.Role]string
}

// Name returns the display name of a well-known folder in this locale.
func (n FolderNames) Name(role mailbox.Role) (string, error) {
	name, ok := n.names[role]
	if !ok {
		return "", fmt.Errorf("%w: locale %q has no name for folder %q", lib.ErrLocaleNotFound, n.Tag, role)
	}
	return name, nil
}

// Table maps a locale tag to its well-known folder names.
type Table struct {
	locales map[string]FolderNames
}

type tableFile struct {
	Locales map[string]localeEntry `yaml:"locales"`
}

type localeEntry struct {
	DateFormat string            `yaml:"dateFormat"`
	TimeFormat string            `yaml:"timeFormat"`
	Folders    map[string]string `yaml:"folders"`
}

// LoadTable loads the embedded locale table.
func LoadTable() (*Table, error) {
	return loadTable(embeddedTable)
}

// LoadTableFromReader loads a locale table from an external resource
// (same format as the embedded one).
func LoadTableFromReader(reader io.Reader) (*Table, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("cannot read locale table: %w", err)
	}
	return loadTable(content)
}

func loadTable(content []byte) (*Table, error) {
	file := tableFile{}
	err := yaml.Unmarshal(content, &file)
	if err != nil {
		return nil, fmt.Errorf("cannot parse locale table: %w", err)
	}
	if len(file.Locales) == 0 {
		return nil, fmt.Errorf("locale table is empty")
	}

	table := &Table{
		locales: make(map[string]FolderNames, len(file.Locales)),
	}
	for tag, entry := range file.Locales {
		names, err := validateEntry(tag, entry)
		if err != nil {
			return nil, err
		}
		table.locales[tag] = names
	}
	return table, nil
}

// validateEntry checks the locale defines a name for every well-known role
// plus its date and time formats. An incomplete locale fails the whole load:
// resolution against it could silently skip folders otherwise.
func validateEntry(tag string, entry localeEntry) (FolderNames, error) {
	if entry.DateFormat == "" || entry.TimeFormat == "" {
		return FolderNames{}, fmt.Errorf("%w: locale %q is missing date/time formats", lib.ErrLocaleNotFound, tag)
	}
	names := make(map[mailbox.Role]string, len(mailbox.Roles))
	for _, role := range mailbox.Roles {
		name, ok := entry.Folders[string(role)]
		if !ok || name == "" {
			return FolderNames{}, fmt.Errorf("%w: locale %q has no name for folder %q", lib.ErrLocaleNotFound, tag, role)
		}
		names[role] = name
	}
	return FolderNames{
		Tag:        tag,
		DateFormat: entry.DateFormat,
		TimeFormat: entry.TimeFormat,
		names:      names,
	}, nil
}

// Lookup returns the folder names of a locale tag.
func (t *Table) Lookup(tag string) (FolderNames, error) {
	names, ok := t.locales[tag]
	if !ok {
		return FolderNames{}, fmt.Errorf("%w: locale %q is not in the table", lib.ErrLocaleNotFound, tag)
	}
	return names, nil
}

// Tags returns the supported locale tags, sorted.
func (t *Table) Tags() []string {
	tags := make([]string, 0, len(t.locales))
	for tag := range t.locales {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
