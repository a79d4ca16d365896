// Command dupefinder finds near-duplicate audio files by comparing
// chromaprint fingerprints.
//
//	dupefinder scan [folder]          fingerprint a folder and report matches
//	dupefinder compare <a> <b>        score two files without touching a cache
//	dupefinder cache list|stats|prune|clear <folder>
//	dupefinder doctor [folder]        check fpcalc and folder access
//	dupefinder config init|validate
//
// When scan is run without a folder it prompts for one on stdin.
package main
