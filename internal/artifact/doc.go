// Package artifact downloads zerb release packages and checks their
// detached OpenPGP signatures.
//
// # Naming
//
// Every release publishes one file per package format and architecture
// under {download_base}/v{version}/:
//
//	zerb_{version}_{amd64|arm64}.deb
//	zerb-{version}-1.{x86_64|aarch64}.rpm
//	zerb-{version}-{x86_64|aarch64}.AppImage
//
// with an armored signature next to each at the same URL plus ".asc".
//
// # Trust model
//
// Downloads are attempted exactly once; a failed download stops the run.
// Signature checking is best effort. A missing signature, a missing gpg
// binary or a bad signature lowers confidence and is logged, but the
// install still proceeds unless the package manager itself refuses.
// Callers get an Outcome value instead of an error.
//
// # Usage
//
//	art, err := artifact.Describe(artifact.KindDeb, "zerb", "1.2.3", "amd64", base)
//	if err != nil {
//	    return err
//	}
//	if err := fetcher.Fetch(ctx, art, workDir); err != nil {
//	    return err
//	}
//	defer art.Remove()
//	outcome := verifier.Verify(ctx, art, skipVerify)
package artifact
