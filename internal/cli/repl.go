// Package cli implements the terminal front end of karacalc: progress
// display, result presenters, output files, the demonstration suite, stress
// runs, the interactive prompt and shell completion.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agbru/karacalc/internal/bigint"
	"github.com/agbru/karacalc/internal/format"
	"github.com/agbru/karacalc/internal/karatsuba"
	"github.com/agbru/karacalc/internal/progress"
	"github.com/agbru/karacalc/internal/ui"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// DefaultAlgo is the algorithm used until changed with "algo".
	DefaultAlgo string
	// Timeout is the maximum duration of each multiplication.
	Timeout time.Duration
	// Options are the engine options; "cutoff" changes Options.Cutoff.
	Options karatsuba.Options
}

// REPL is an interactive multiplication session. It asks for a first and
// a second number and prints their product, until "q" is entered at
// either prompt.
type REPL struct {
	config      REPLConfig
	registry    map[string]karatsuba.Calculator
	currentAlgo string
	in          io.Reader
	out         io.Writer
}

// NewREPL creates a new REPL over the given calculators.
func NewREPL(registry map[string]karatsuba.Calculator, config REPLConfig) *REPL {
	currentAlgo := strings.ToLower(config.DefaultAlgo)
	if _, ok := registry[currentAlgo]; !ok {
		if _, ok := registry["karatsuba"]; ok {
			currentAlgo = "karatsuba"
		} else if names := slices.Sorted(maps.Keys(registry)); len(names) > 0 {
			currentAlgo = names[0]
		}
	}
	if config.Options.Cutoff == 0 {
		config.Options.Cutoff = karatsuba.DefaultCutoff
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}

	return &REPL{
		config:      config,
		registry:    registry,
		currentAlgo: currentAlgo,
		in:          os.Stdin,
		out:         os.Stdout,
	}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// errQuit ends the session.
var errQuit = errors.New("quit")

// Start runs the session until the user quits or input ends.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for {
		x, err := r.readFirst(reader)
		if err != nil {
			fmt.Fprintf(r.out, "\n%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
			return
		}
		if x == nil {
			continue
		}
		y, err := r.readOperand(reader, "Enter the second number")
		if err != nil {
			fmt.Fprintf(r.out, "\n%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
			return
		}
		r.multiply(*x, y)
	}
}

// readLine prints prompt and returns the next trimmed line.
func (r *REPL) readLine(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Fprintf(r.out, "%s%s (q to quit): %s", ui.ColorGreen(), prompt, ui.ColorReset())
	line, err := reader.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readFirst reads the first operand. Commands and the one-line "X * Y"
// form are handled here; it returns a nil operand when the line was
// consumed by one of them.
func (r *REPL) readFirst(reader *bufio.Reader) (*bigint.Int, error) {
	for {
		line, err := r.readLine(reader, "Enter the first number")
		if err != nil {
			return nil, err
		}
		if line == "" {
			continue
		}
		if isQuit(line) {
			return nil, errQuit
		}
		if x, y, ok := parseProductExpr(line); ok {
			r.multiply(x, y)
			return nil, nil
		}
		if r.processCommand(line) {
			return nil, nil
		}
		x, err := bigint.Parse(line)
		if err != nil {
			r.printInvalid(line, err)
			continue
		}
		return &x, nil
	}
}

// readOperand prompts until a valid integer is entered.
func (r *REPL) readOperand(reader *bufio.Reader, prompt string) (bigint.Int, error) {
	for {
		line, err := r.readLine(reader, prompt)
		if err != nil {
			return bigint.Int{}, err
		}
		if line == "" {
			continue
		}
		if isQuit(line) {
			return bigint.Int{}, errQuit
		}
		v, err := bigint.Parse(line)
		if err != nil {
			r.printInvalid(line, err)
			continue
		}
		return v, nil
	}
}

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "q", "quit", "exit":
		return true
	}
	return false
}

func (r *REPL) printInvalid(line string, err error) {
	fmt.Fprintf(r.out, "%sInvalid input %q: %v%s\n", ui.ColorRed(), line, err, ui.ColorReset())
	fmt.Fprintf(r.out, "Please enter a non-negative integer.\n")
}

// parseProductExpr recognizes "X * Y" (also "X x Y").
func parseProductExpr(line string) (bigint.Int, bigint.Int, bool) {
	for _, sep := range []string{"*", "×", " x "} {
		left, right, found := strings.Cut(line, sep)
		if !found {
			continue
		}
		x, errX := bigint.Parse(strings.TrimSpace(left))
		y, errY := bigint.Parse(strings.TrimSpace(right))
		if errX != nil || errY != nil {
			return bigint.Int{}, bigint.Int{}, false
		}
		return x, y, true
	}
	return bigint.Int{}, bigint.Int{}, false
}

// printBanner displays the REPL welcome banner.
func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s║%s     %s✖ Karatsuba Multiplication - Interactive Mode%s        %s║%s\n",
		ui.ColorCyan(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorCyan(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

// printHelp displays available commands.
func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sEnter two numbers to multiply them, or one of:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sX * Y%s          - Multiply X by Y in one line\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %salgo <name>%s    - Change algorithm (%s)\n", ui.ColorYellow(), ui.ColorReset(), r.getAlgoList())
	fmt.Fprintf(r.out, "  %scutoff <n>%s     - Change the base-case threshold\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %scompare X Y%s    - Compare all algorithms on X * Y\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %slist%s           - List available algorithms\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s         - Display current configuration\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s           - Display this help\n", ui.ColorYellow(), ui.ColorReset())
	fmt.Fprintf(r.out, "  %sq%s / %sexit%s       - Exit interactive mode\n", ui.ColorYellow(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
}

// getAlgoList returns a comma-separated, sorted list of algorithms.
func (r *REPL) getAlgoList() string {
	return strings.Join(slices.Sorted(maps.Keys(r.registry)), ", ")
}

// processCommand executes line if it is a command. It reports whether the
// line was a command.
func (r *REPL) processCommand(line string) bool {
	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "algo", "a":
		r.cmdAlgo(args)
	case "cutoff":
		r.cmdCutoff(args)
	case "compare", "cmp":
		r.cmdCompare(args)
	case "list", "ls":
		r.cmdList()
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	default:
		return false
	}
	return true
}

// multiply runs the current algorithm on x and y and prints the product.
func (r *REPL) multiply(x, y bigint.Int) {
	calc, ok := r.registry[r.currentAlgo]
	if !ok {
		fmt.Fprintf(r.out, "%sAlgorithm not found: %s%s\n", ui.ColorRed(), r.currentAlgo, ui.ColorReset())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	progressChan := make(chan progress.ProgressUpdate, 10)
	var wg sync.WaitGroup
	wg.Add(1)
	go DisplayProgress(&wg, progressChan, 1, io.Discard)

	start := time.Now()
	product, err := calc.Calculate(ctx, progressChan, 0, x, y, r.config.Options)
	duration := time.Since(start)
	close(progressChan)
	wg.Wait()

	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}

	value, truncated := FormatProduct(product, false)
	fmt.Fprintf(r.out, "\n%sResult (%s):%s\n", ui.ColorBold(), calc.Name(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Time:   %s%s%s\n", ui.ColorGreen(), format.FormatExecutionDuration(duration), ui.ColorReset())
	fmt.Fprintf(r.out, "  Digits: %s%d%s\n", ui.ColorCyan(), product.DigitLength(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Product: %s%s%s\n", ui.ColorGreen(), value, ui.ColorReset())
	if truncated {
		fmt.Fprintln(r.out, "  (truncated)")
	}
	fmt.Fprintln(r.out)
}

// cmdAlgo handles the "algo" command.
func (r *REPL) cmdAlgo(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: algo <name>%s\n", ui.ColorRed(), ui.ColorReset())
		fmt.Fprintf(r.out, "Available algorithms: %s\n", r.getAlgoList())
		return
	}

	name := strings.ToLower(args[0])
	calc, ok := r.registry[name]
	if !ok {
		fmt.Fprintf(r.out, "%sUnknown algorithm: %s%s\n", ui.ColorRed(), name, ui.ColorReset())
		fmt.Fprintf(r.out, "Available algorithms: %s\n", r.getAlgoList())
		return
	}

	r.currentAlgo = name
	fmt.Fprintf(r.out, "Algorithm changed to: %s%s%s\n", ui.ColorGreen(), calc.Name(), ui.ColorReset())
}

// cmdCutoff handles the "cutoff" command.
func (r *REPL) cmdCutoff(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: cutoff <n>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	n, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil || n < karatsuba.DefaultCutoff || n > karatsuba.MaxCutoff {
		fmt.Fprintf(r.out, "%sInvalid cutoff: %s (must be between %d and %d)%s\n",
			ui.ColorRed(), args[0], karatsuba.DefaultCutoff, karatsuba.MaxCutoff, ui.ColorReset())
		return
	}
	r.config.Options.Cutoff = uint32(n)
	fmt.Fprintf(r.out, "Cutoff changed to: %s%d%s\n", ui.ColorGreen(), n, ui.ColorReset())
}

// cmdCompare handles the "compare" command.
func (r *REPL) cmdCompare(args []string) {
	var x, y bigint.Int
	var ok bool
	switch len(args) {
	case 2:
		var errX, errY error
		x, errX = bigint.Parse(args[0])
		y, errY = bigint.Parse(args[1])
		ok = errX == nil && errY == nil
	default:
		x, y, ok = parseProductExpr(strings.Join(args, " "))
	}
	if !ok {
		fmt.Fprintf(r.out, "%sUsage: compare X Y%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}

	fmt.Fprintf(r.out, "\n%sComparison for %d-digit x %d-digit operands:%s\n",
		ui.ColorBold(), x.DigitLength(), y.DigitLength(), ui.ColorReset())
	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────%s\n", ui.ColorCyan(), ui.ColorReset())

	var first *bigint.Int
	for _, name := range slices.Sorted(maps.Keys(r.registry)) {
		calc := r.registry[name]
		ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
		start := time.Now()
		product, err := calc.Calculate(ctx, nil, 0, x, y, r.config.Options)
		duration := time.Since(start)
		cancel()

		if err != nil {
			fmt.Fprintf(r.out, "  %s%-12s%s: %sError - %v%s\n",
				ui.ColorYellow(), name, ui.ColorReset(), ui.ColorRed(), err, ui.ColorReset())
			continue
		}

		status := ui.ColorGreen() + "✓" + ui.ColorReset()
		if first == nil {
			first = &product
		} else if !product.Equal(*first) {
			status = ui.ColorRed() + "✗ INCONSISTENT" + ui.ColorReset()
		}

		fmt.Fprintf(r.out, "  %s%-12s%s: %s%12s%s %s\n",
			ui.ColorYellow(), name, ui.ColorReset(),
			ui.ColorCyan(), format.FormatExecutionDuration(duration), ui.ColorReset(),
			status)
	}

	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────%s\n\n", ui.ColorCyan(), ui.ColorReset())
}

// cmdList handles the "list" command.
func (r *REPL) cmdList() {
	fmt.Fprintf(r.out, "\n%sAvailable algorithms:%s\n", ui.ColorBold(), ui.ColorReset())
	for _, name := range slices.Sorted(maps.Keys(r.registry)) {
		marker := "  "
		if name == r.currentAlgo {
			marker = ui.ColorGreen() + "► " + ui.ColorReset()
		}
		fmt.Fprintf(r.out, "%s%s%-10s%s - %s\n", marker, ui.ColorYellow(), name, ui.ColorReset(), r.registry[name].Name())
	}
	fmt.Fprintln(r.out)
}

// cmdStatus displays current REPL configuration.
func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Algorithm:  %s%s%s\n", ui.ColorCyan(), r.currentAlgo, ui.ColorReset())
	fmt.Fprintf(r.out, "  Timeout:    %s%s%s\n", ui.ColorCyan(), r.config.Timeout, ui.ColorReset())
	fmt.Fprintf(r.out, "  Cutoff:     %s%d%s\n", ui.ColorCyan(), r.config.Options.Cutoff, ui.ColorReset())
	parallel := "off"
	if r.config.Options.ParallelThreshold > 0 {
		parallel = fmt.Sprintf("%d digits", r.config.Options.ParallelThreshold)
	}
	fmt.Fprintf(r.out, "  Parallel:   %s%s%s\n", ui.ColorCyan(), parallel, ui.ColorReset())
	fmt.Fprintln(r.out)
}
