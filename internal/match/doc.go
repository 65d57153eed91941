// Package match picks a viewer material for a catalog intent.
//
// Catalog rows name materials the way designers do; imported asset files name
// them the way exporters do. The two rarely agree byte for byte, so Material
// runs a tier cascade from strict to loose and stops at the first tier that
// yields a candidate:
//
//  1. exact name equality
//  2. normalized name equality (case, whitespace and underscores ignored)
//  3. case-insensitive substring relation between names, either direction
//  4. normalized equality of the candidate's color tag and the target color
//  5. the segment after the target color's last underscore as a substring of
//     the candidate name
//
// Ties within a tier resolve to the first candidate in slot order. Later
// tiers are never consulted once an earlier tier matches.
package match
