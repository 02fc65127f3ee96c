// Package shell works out which login shell the user runs and what line
// would put a directory on that shell's PATH.
//
// The installer never edits rc files. When the AppImage lands in a
// directory that is not on PATH, it prints the line to add and the file to
// add it to:
//
//	hint := shell.PathHint("/home/me/.local/bin")
//	// Add it to your PATH by appending this line to /home/me/.bashrc:
//	//   export PATH="/home/me/.local/bin:$PATH"
//
// Detection reads $SHELL only. bash, zsh and fish get their own startup
// files; every other shell is treated as POSIX sh and pointed at ~/.profile.
package shell
