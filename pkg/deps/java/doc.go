// Package java recognizes Maven and Gradle builds.
//
// # Gradle
//
// [GradleParser] reads build.gradle scripts without a Groovy grammar. A
// line ending in "{" opens a block named by the text before the brace; the
// block's body is every following line at the body's indentation. String
// variables declared with "def NAME = 'value'" are substituted into
// "$NAME", "${NAME}" and "NAME.concat('x')" references before coordinates
// are read from each dependencies block.
//
// A pinned coordinate such as 'com.acme:core:1.2.3' is not returned: the
// build resolves exactly that release from its configured repositories.
// Ranges ('1.+', '[1.0,2.0)'), snapshots, and coordinates without a
// version are returned for checking. When every repository the script
// declares is internal, nothing is returned.
//
// gradle.lockfile is read line by line and every locked coordinate is
// returned.
//
// # Maven
//
// [POMParser] applies the same pinning rule to pom.xml dependencies and
// plugins after interpolating ${property} references.
//
// Both ecosystems look names up on Maven Central through [NewChecker].
package java
