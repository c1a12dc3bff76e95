// Package treeview renders search index nodes into display rows.
//
// A Row pairs a node handle with an HTML label ("📁 <b>Artist</b><br>
// <small>12 songs by ROCK</small>") plus the raw fields so clients that
// prefer their own styling can ignore the markup entirely.
package treeview
