package object

import "fmt"

// HashBytes computes the raw SHA-1 of data.
func HashBytes(data []byte) Oid {
	return Oid(Sha1(data))
}

// HashObject computes the SHA-1 of the framed form "type len\0content",
// which is the object's content address.
func HashObject(objType ObjectType, data []byte) Oid {
	s := newSha1()
	s.update([]byte(fmt.Sprintf("%s %d\x00", objType, len(data))))
	s.update(data)
	return Oid(s.sum())
}
