// multinote CLI - multisig note transaction builder
//
// The CLI drives the full off-band signing workflow: assemble an unsigned
// transaction from notes and outputs, pass the file around, let each signer
// attach their signature, merge independently signed copies, and check when
// the result is ready to broadcast.
//
// Example usage:
//
//	# Generate a signer keypair
//	multinote keygen
//
//	# Assemble a transaction into tx.json
//	multinote assemble \
//	  -note origin:0:1000:2:pkA,pkB,pkC \
//	  -output x:700:1:pkX -output y:300:1:pkY \
//	  -o tx.json
//
//	# Sign spend 0 with a WIF key
//	multinote sign -tx tx.json -spend 0 -wif KxYZ...
//
//	# Check progress and validity
//	multinote status -tx tx.json
//	multinote validate -tx tx.json
//
//	# Merge copies signed by different parties
//	multinote combine -o merged.json alice.json bob.json
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/suffix-labs/multinote/pkg/api"
	"github.com/suffix-labs/multinote/pkg/note"
	"github.com/suffix-labs/multinote/pkg/payreq"
	"github.com/suffix-labs/multinote/pkg/roles"
	"github.com/suffix-labs/multinote/pkg/store"
	"github.com/suffix-labs/multinote/pkg/wallet"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "keygen":
		cmdKeygen(os.Args[2:])
	case "assemble":
		cmdAssemble(os.Args[2:])
	case "digest":
		cmdDigest(os.Args[2:])
	case "sign":
		cmdSign(os.Args[2:])
	case "status":
		cmdStatus(os.Args[2:])
	case "validate":
		cmdValidate(os.Args[2:])
	case "combine":
		cmdCombine(os.Args[2:])
	case "draft":
		cmdDraft(os.Args[2:])
	case "version":
		cmdVersion()
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`multinote - multisig note transaction builder

Usage:
  multinote <command> [options]

Commands:
  keygen                       Generate a signer keypair (pubkey + WIF)
  assemble                     Assemble an unsigned transaction
  digest                       Show the signing digest for one spend
  sign                         Sign one spend with a WIF private key
  status                       Show per-spend signing progress
  validate                     Check broadcast readiness
  combine                      Merge independently signed copies
  draft                        Manage the local draft store
  version                      Show version information
  help                         Show this help message

Formats:
  -note    first:last:value:threshold:pk1,pk2,...
  -output  recipient:value:threshold:pk1,pk2,...
  -request note:<recipient>?amount=N&threshold=M&keys=pk1,pk2`)
}

func cmdVersion() {
	fmt.Println("multinote v0.1.0")
	fmt.Println("Multisig transaction core for a UTXO-style note ledger")
}

// stringList collects a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func cmdKeygen(args []string) {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	testnet := fs.Bool("testnet", false, "use the testnet WIF version byte")
	fs.Parse(args)

	kp, err := wallet.Generate()
	if err != nil {
		fail("Failed to generate keypair: %v", err)
	}
	fmt.Printf("Public key: %s\n", kp.PublicKey())
	fmt.Printf("WIF:        %s\n", kp.WIF(*testnet))
}

func cmdAssemble(args []string) {
	fs := flag.NewFlagSet("assemble", flag.ExitOnError)
	var noteSpecs, outputSpecs, requests stringList
	fs.Var(&noteSpecs, "note", "note to spend (repeatable)")
	fs.Var(&outputSpecs, "output", "output to create (repeatable)")
	fs.Var(&requests, "request", "payment request URI contributing outputs (repeatable)")
	outFile := fs.String("o", "tx.json", "output file")
	fs.Parse(args)

	var notes []note.Note
	for _, spec := range noteSpecs {
		n, err := parseNoteSpec(spec)
		if err != nil {
			fail("Invalid -note %q: %v", spec, err)
		}
		notes = append(notes, n)
	}

	var outputs []note.Output
	for _, spec := range outputSpecs {
		o, err := parseOutputSpec(spec)
		if err != nil {
			fail("Invalid -output %q: %v", spec, err)
		}
		outputs = append(outputs, o)
	}
	for _, uri := range requests {
		req, err := payreq.Parse(uri)
		if err != nil {
			fail("Invalid -request %q: %v", uri, err)
		}
		outputs = append(outputs, req.Outputs...)
	}

	data, err := api.AssembleTransaction(notes, outputs)
	if err != nil {
		fail("Assemble failed: %v", err)
	}
	if err := os.WriteFile(*outFile, data, 0o644); err != nil {
		fail("Write %s: %v", *outFile, err)
	}
	fmt.Printf("Assembled transaction with %d spend(s) and %d output(s) -> %s\n",
		len(notes), len(outputs), *outFile)
}

func cmdDigest(args []string) {
	fs := flag.NewFlagSet("digest", flag.ExitOnError)
	txFile := fs.String("tx", "", "transaction file")
	spend := fs.Int("spend", 0, "spend index")
	fs.Parse(args)

	data := mustRead(*txFile)
	h, err := api.GetSpendDigest(data, *spend)
	if err != nil {
		fail("Digest failed: %v", err)
	}
	fmt.Println(h)
}

func cmdSign(args []string) {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	txFile := fs.String("tx", "", "transaction file")
	spend := fs.Int("spend", 0, "spend index")
	wif := fs.String("wif", "", "WIF-encoded private key")
	outFile := fs.String("o", "", "output file (default: overwrite -tx)")
	fs.Parse(args)

	if *wif == "" {
		fail("Error: -wif required")
	}
	data := mustRead(*txFile)

	kp, err := wallet.FromWIF(*wif)
	if err != nil {
		fail("Invalid key: %v", err)
	}

	h, err := api.GetSpendDigest(data, *spend)
	if err != nil {
		fail("Digest failed: %v", err)
	}
	pk, sig, err := kp.Sign(h)
	if err != nil {
		fail("Signing failed: %v", err)
	}

	signed, err := api.AppendSignature(data, *spend, pk, sig)
	if err != nil {
		fail("Append signature failed: %v", err)
	}

	dst := *outFile
	if dst == "" {
		dst = *txFile
	}
	if err := os.WriteFile(dst, signed, 0o644); err != nil {
		fail("Write %s: %v", dst, err)
	}

	st, err := api.GetSigningStatus(signed, *spend)
	if err != nil {
		fail("Status failed: %v", err)
	}
	fmt.Printf("Signed spend %d as %s\n", *spend, pk)
	printStatus(st)
}

func cmdStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	txFile := fs.String("tx", "", "transaction file")
	spend := fs.Int("spend", -1, "spend index (-1 = all)")
	fs.Parse(args)

	data := mustRead(*txFile)
	tx, err := note.Parse(data)
	if err != nil {
		fail("Parse failed: %v", err)
	}

	if *spend >= 0 {
		st, err := roles.SigningStatus(tx, *spend)
		if err != nil {
			fail("Status failed: %v", err)
		}
		printStatus(st)
		return
	}
	for i := range tx.Spends {
		st, _ := roles.SigningStatus(tx, i)
		printStatus(st)
	}
}

func printStatus(st *note.SigningStatus) {
	state := "incomplete"
	if st.Complete {
		state = "complete"
	}
	fmt.Printf("Spend %d: %d/%d signatures, %s\n",
		st.SpendIndex, len(st.Signed), st.Threshold, state)
	if len(st.Pending) > 0 {
		fmt.Printf("  pending: %s\n", joinKeys(st.Pending))
	}
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	txFile := fs.String("tx", "", "transaction file")
	fs.Parse(args)

	data := mustRead(*txFile)
	report, err := api.ValidateTransaction(data)
	if err != nil {
		fail("Validate failed: %v", err)
	}

	if report.Valid {
		fmt.Println("Transaction is valid and ready for broadcast")
		return
	}
	fmt.Println("Transaction is not ready:")
	for _, reason := range report.Reasons() {
		fmt.Printf("  - %s\n", reason)
	}
	os.Exit(1)
}

func cmdCombine(args []string) {
	fs := flag.NewFlagSet("combine", flag.ExitOnError)
	outFile := fs.String("o", "merged.json", "output file")
	fs.Parse(args)

	files := fs.Args()
	if len(files) < 2 {
		fail("Usage: multinote combine -o merged.json <file> <file> [...]")
	}

	datas := make([][]byte, 0, len(files))
	for _, f := range files {
		datas = append(datas, mustRead(f))
	}

	merged, err := api.CombineTransactions(datas...)
	if err != nil {
		fail("Combine failed: %v", err)
	}
	if err := os.WriteFile(*outFile, merged, 0o644); err != nil {
		fail("Write %s: %v", *outFile, err)
	}
	fmt.Printf("Merged %d copies -> %s\n", len(files), *outFile)
}

func cmdDraft(args []string) {
	if len(args) < 1 {
		fail("Usage: multinote draft <save|list|show|rm> [options]")
	}
	sub := args[0]

	fs := flag.NewFlagSet("draft "+sub, flag.ExitOnError)
	dbPath := fs.String("db", defaultDraftDB(), "draft store path")
	txFile := fs.String("tx", "", "transaction file (save)")
	fs.Parse(args[1:])

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o700); err != nil {
		fail("Create store dir: %v", err)
	}
	st, err := store.Open(*dbPath)
	if err != nil {
		fail("Open store: %v", err)
	}
	defer st.Close()

	switch sub {
	case "save":
		tx, err := note.Parse(mustRead(*txFile))
		if err != nil {
			fail("Parse failed: %v", err)
		}
		id, err := st.Put(tx)
		if err != nil {
			fail("Save failed: %v", err)
		}
		fmt.Printf("Saved draft %s\n", id)
	case "list":
		ids, err := st.List()
		if err != nil {
			fail("List failed: %v", err)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
	case "show":
		if fs.NArg() < 1 {
			fail("Usage: multinote draft show <id>")
		}
		tx, err := st.Get(fs.Arg(0))
		if err != nil {
			fail("Load failed: %v", err)
		}
		if tx == nil {
			fail("No draft with id %s", fs.Arg(0))
		}
		data, err := note.Serialize(tx)
		if err != nil {
			fail("Serialize failed: %v", err)
		}
		fmt.Println(string(data))
	case "rm":
		if fs.NArg() < 1 {
			fail("Usage: multinote draft rm <id>")
		}
		if err := st.Delete(fs.Arg(0)); err != nil {
			fail("Delete failed: %v", err)
		}
	default:
		fail("Unknown draft subcommand: %s", sub)
	}
}

func defaultDraftDB() string {
	if home := os.Getenv("MULTINOTE_HOME"); home != "" {
		return filepath.Join(home, "drafts.db")
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return "drafts.db"
	}
	return filepath.Join(dir, ".multinote", "drafts.db")
}

func mustRead(path string) []byte {
	if path == "" {
		fail("Error: -tx required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fail("Read %s: %v", path, err)
	}
	return data
}

// parseNoteSpec parses first:last:value:threshold:pk1,pk2,...
func parseNoteSpec(spec string) (note.Note, error) {
	parts := strings.SplitN(spec, ":", 5)
	if len(parts) != 5 {
		return note.Note{}, fmt.Errorf("want first:last:value:threshold:keys")
	}
	value, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return note.Note{}, fmt.Errorf("invalid value %q", parts[2])
	}
	lock, err := parseLockSpec(parts[3], parts[4])
	if err != nil {
		return note.Note{}, err
	}
	return note.Note{
		Name:  note.NoteName{First: parts[0], Last: parts[1]},
		Value: value,
		Lock:  lock,
	}, nil
}

// parseOutputSpec parses recipient:value:threshold:pk1,pk2,...
func parseOutputSpec(spec string) (note.Output, error) {
	parts := strings.SplitN(spec, ":", 4)
	if len(parts) != 4 {
		return note.Output{}, fmt.Errorf("want recipient:value:threshold:keys")
	}
	value, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return note.Output{}, fmt.Errorf("invalid value %q", parts[1])
	}
	lock, err := parseLockSpec(parts[2], parts[3])
	if err != nil {
		return note.Output{}, err
	}
	return note.Output{Recipient: parts[0], Value: value, Lock: lock}, nil
}

func parseLockSpec(thresholdStr, keysStr string) (note.Lock, error) {
	threshold, err := strconv.Atoi(thresholdStr)
	if err != nil {
		return note.Lock{}, fmt.Errorf("invalid threshold %q", thresholdStr)
	}
	var keys []note.PublicKey
	for _, k := range strings.Split(keysStr, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys = append(keys, note.PublicKey(k))
		}
	}
	return note.NewPkhLock(threshold, keys...), nil
}

func joinKeys(keys []note.PublicKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}
