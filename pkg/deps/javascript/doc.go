// Package javascript recognizes npm, Yarn, Bower and gulp projects.
//
// All four look names up on an npm-compatible registry through
// [NewChecker]: npm, Bower and gulp use registry.npmjs.org, Yarn uses
// registry.yarnpkg.com.
//
// Lockfiles record the URL each package was downloaded from. Entries
// resolved from an internal host are marked internal, entries resolved
// elsewhere carry the URL and are answered without a registry call. A
// .npmrc whose registry= lines all point at internal hosts suppresses the
// npm files in its directory.
//
// Scoped packages (@scope/name) are never reported: publishing under a
// scope requires owning it.
package javascript
