// Package artwork finds album art for tracks and serves it as cached
// square thumbnails.
//
// Art is discovered as a conventional cover file (cover/folder/front/
// album with any common image extension) in the track's directory, with
// embedded tag pictures as the fallback. Thumbnails are keyed by the
// source file's path and modification time, so replaced covers get
// regenerated automatically.
package artwork
