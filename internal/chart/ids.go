package chart

import (
	"slices"
	"strconv"
)

// EntityID identifies a line, note or event. Ids are allocated from a single counter and
// never reused, so an id captured by a command stays unambiguous for the life of the world.
// Zero means "none".
type EntityID uint64

func (id EntityID) String() string { return strconv.FormatUint(uint64(id), 10) }

func (id EntityID) Valid() bool { return id != 0 }

// insertID keeps ids sorted, which is also creation order.
func insertID(ids []EntityID, id EntityID) []EntityID {
	i, found := slices.BinarySearch(ids, id)
	if found {
		return ids
	}
	return slices.Insert(ids, i, id)
}

func removeID(ids []EntityID, id EntityID) []EntityID {
	i, found := slices.BinarySearch(ids, id)
	if !found {
		return ids
	}
	return slices.Delete(ids, i, i+1)
}
