// Command asmcd runs one of the aSMC example models to completion and
// prints its empirical marginal distribution, the same single-shot CLI
// role cmd/poaid's subcommands (send/balance/generate-key) play next to
// the long-running daemon — except every asmcd subcommand is a
// one-shot inference run, not a daemon, since the engine itself has no
// background process to keep alive.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}
	runCLI(os.Args[1], os.Args[2:])
}

func printHelp() {
	fmt.Println("asmcd - Asynchronous Anytime Sequential Monte Carlo runner")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  asmcd bernoulli   [flags]   - sample Bernoulli(p), no observation")
	fmt.Println("  asmcd observe     [flags]   - x ~ Normal(0,1), observe Normal(x,1) = obs")
	fmt.Println("  asmcd allkill     [flags]   - every particle dies at the first factor")
	fmt.Println("  asmcd linreg      [flags]   - two-point linear regression posterior over slope")
	fmt.Println("  asmcd factorchain [flags]   - chain of n zero-weight factors")
	fmt.Println("  asmcd help                  - show this help")
	fmt.Println()
	fmt.Println("Common flags (every subcommand above accepts these):")
	fmt.Println("  -particles=<n>        target number of completed particles (default 1000)")
	fmt.Println("  -buffer=<n>           scheduler buffer size / rho (default 100)")
	fmt.Println("  -seed=<n>             master RNG seed (default 1)")
	fmt.Println("  -verbose              log scheduler-level factor/exit events")
	fmt.Println("  -trace-dir=<path>     persist completed particles to a badger trace store")
	fmt.Println("  -gossip-listen=<port> start a libp2p progress reporter on this port (0 disables)")
	fmt.Println("  -gossip-peer=<addr>   multiaddr of a peer reporter to dial")
}
