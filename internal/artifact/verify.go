package artifact

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"go.uber.org/zap"

	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/config"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/keyring"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/logger"
	"github.com/ZebulonRouseFrantzich/zerb-installer/internal/runner"
)

// ToolGPG is the executable used by the gpg backend.
const ToolGPG = "gpg"

// VerifierConfig configures a Verifier.
type VerifierConfig struct {
	// Backend is config.VerifierGPG or config.VerifierNative.
	Backend string
	// Fetcher downloads the signature and the publisher key.
	Fetcher *Fetcher
	Runner  runner.Runner
	// KeyURL serves the publisher's public key.
	KeyURL string
	Log    *zap.SugaredLogger
}

// Verifier checks detached signatures. It never fails the run.
type Verifier struct {
	backend string
	fetcher *Fetcher
	runner  runner.Runner
	keyURL  string
	log     *zap.SugaredLogger
}

// NewVerifier creates a verifier.
func NewVerifier(cfg VerifierConfig) *Verifier {
	backend := cfg.Backend
	if backend == "" {
		backend = config.VerifierGPG
	}
	return &Verifier{
		backend: backend,
		fetcher: cfg.Fetcher,
		runner:  cfg.Runner,
		keyURL:  cfg.KeyURL,
		log:     logger.OrNop(cfg.Log),
	}
}

// Verify checks art's detached signature and reports what happened.
// The downloaded signature is removed before Verify returns.
func (v *Verifier) Verify(ctx context.Context, art *Artifact, skip bool) Outcome {
	outcome := v.verify(ctx, art, skip)

	switch outcome {
	case Verified:
		v.log.Infof("Signature verified for %s", art.Name)
	case SkippedByFlag:
		v.log.Warnf("Skipping signature verification for %s (--skip-verify)", art.Name)
	case SkippedNoTool:
		v.log.Warnf("gpg not found; cannot verify the signature of %s", art.Name)
	case SkippedNoSignature:
		v.log.Warnf("No signature published for %s; installing unverified", art.Name)
	case FailedSoft:
		v.log.Warnf("Signature verification FAILED for %s; continuing", art.Name)
	}
	return outcome
}

func (v *Verifier) verify(ctx context.Context, art *Artifact, skip bool) Outcome {
	if skip {
		return SkippedByFlag
	}
	if v.backend == config.VerifierGPG && !runner.Has(v.runner, ToolGPG) {
		return SkippedNoTool
	}

	sigPath := art.LocalPath + SignatureSuffix
	defer os.Remove(sigPath)

	if err := v.fetcher.Download(ctx, art.SignatureURL, sigPath); err != nil {
		if IsNotFound(err) {
			v.log.Debugw("signature not published", "url", art.SignatureURL)
		} else {
			v.log.Warnf("Could not download the signature for %s: %v", art.Name, err)
		}
		return SkippedNoSignature
	}

	keyPath := filepath.Join(filepath.Dir(art.LocalPath), "publisher-key.asc")
	defer os.Remove(keyPath)

	if v.backend == config.VerifierNative {
		return v.verifyNative(ctx, art, sigPath, keyPath)
	}
	return v.verifyGPG(ctx, art, sigPath, keyPath)
}

// verifyGPG imports the publisher key into the user's gpg keyring, ignoring
// failures since the key may already be there, then checks the signature.
func (v *Verifier) verifyGPG(ctx context.Context, art *Artifact, sigPath, keyPath string) Outcome {
	if err := v.fetcher.Download(ctx, v.keyURL, keyPath); err != nil {
		v.log.Debugw("could not fetch publisher key", "url", v.keyURL, "error", err)
	} else if err := v.runner.Run(ctx, ToolGPG, "--batch", "--import", keyPath); err != nil {
		v.log.Debugw("could not import publisher key", "error", err)
	}

	if err := v.runner.Run(ctx, ToolGPG, "--batch", "--verify", sigPath, art.LocalPath); err != nil {
		v.log.Debugw("gpg verify failed", "error", err)
		return FailedSoft
	}
	return Verified
}

// verifyNative checks the signature in-process against the fetched key.
func (v *Verifier) verifyNative(ctx context.Context, art *Artifact, sigPath, keyPath string) Outcome {
	if err := v.fetcher.Download(ctx, v.keyURL, keyPath); err != nil {
		v.log.Debugw("could not fetch publisher key", "url", v.keyURL, "error", err)
		return FailedSoft
	}
	keys, err := keyring.Load(keyPath)
	if err != nil {
		v.log.Debugw("could not read publisher key", "error", err)
		return FailedSoft
	}

	sig, err := os.ReadFile(sigPath)
	if err != nil {
		return FailedSoft
	}
	signed, err := os.Open(art.LocalPath)
	if err != nil {
		return FailedSoft
	}
	defer signed.Close()

	if keyring.IsArmored(sig) {
		_, err = openpgp.CheckArmoredDetachedSignature(keys, signed, bytes.NewReader(sig), nil)
	} else {
		_, err = openpgp.CheckDetachedSignature(keys, signed, bytes.NewReader(sig), nil)
	}
	if err != nil {
		v.log.Debugw("signature check failed", "error", err)
		return FailedSoft
	}
	return Verified
}
