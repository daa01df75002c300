// Package cocoapods provides a search client for the CocoaPods trunk index.
//
// CocoaPods has no per-pod metadata endpoint suitable for existence checks,
// so the client issues a search query against the public index behind
// cocoapods.org and accepts only an exact name match on the top hit.
package cocoapods
