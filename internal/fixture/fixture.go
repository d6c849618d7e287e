// Package fixture contains mapped types shared by tests.
package fixture

import (
	"time"

	"github.com/google/uuid"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is embedded in [Post].
type Address struct {
	Street string
	City   string
	Zip    string `odm:"postal"`
}

// Label is embedded in [Post] as a list.
type Label struct {
	Name   string
	Weight int32
}

// Author is referenced by [Post].
type Author struct {
	ID   primitive.ObjectID
	Name string
}

// CollectionName overrides the default collection name.
func (Author) CollectionName() string {
	return "authors"
}

// Stamp is inlined in [Post].
type Stamp struct {
	Created time.Time
	Edited  time.Time `odm:"edited,omitempty"`
}

// Post covers every kind of field the mapper knows.
type Post struct {
	ID        primitive.ObjectID
	Title     string
	Views     int64
	Likes     int32
	Score     float64
	Rating    float32
	Count     int
	Active    bool
	Tags      []string
	Labels    []Label
	Address   Address `odm:"addr"`
	History   []Address
	Places    map[string]Address
	Meta      map[string]any
	Ranks     []int32
	Author    *Author    `odm:",reference"`
	Editors   []Author   `odm:",reference"`
	AuthorKey domain.Key `odm:"authorKey,reference"`
	Stamp     Stamp      `odm:",inline"`
	Token     uuid.UUID
	Extra     any
	Parent    *Post
	Hidden    string `odm:"-"`
	secret    string
}

// Orphan holds a reference to a type without an id field.
type Orphan struct {
	ID    string
	Owner Address `odm:",reference"`
}
