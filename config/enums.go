package config

//go:generate go tool go-enum --marshal --names --nocase --file=$GOFILE

// DumpFormat selects index dump layout.
// ENUM(line, tree)
type DumpFormat int
