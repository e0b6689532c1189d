package ledger

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"math"
	"sync/atomic"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/soltips-server/pkg/cache"
	"github.com/code-payments/soltips-server/pkg/metrics"
	"github.com/code-payments/soltips-server/pkg/solana"
	"github.com/code-payments/soltips-server/pkg/sync"
)

const (
	metricsStructName = "ledger.executor"

	transactionExecutedEventName = "LedgerTransactionExecuted"

	executeDurationMetricName   = "Ledger/Execute/Duration"
	accountsCommittedMetricName = "Ledger/AccountsCommitted"
)

// ExecutionResult is the outcome of executing or simulating a transaction.
type ExecutionResult struct {
	Signature solana.Signature
	Slot      uint64
	Logs      []string

	// Err is set when the transaction failed. No state was changed.
	Err *solana.TransactionError
}

// Executor applies transactions to the ledger. Transactions touching the same
// writable account are serialized, and each transaction is applied with a
// single atomic store commit.
type Executor struct {
	log  *logrus.Entry
	conf *conf

	store    Store
	programs map[string]Program

	accountLocks *sync.StripedLock
	signatures   cache.Cache

	slot atomic.Uint64
}

// NewExecutor returns an Executor dispatching instructions to programs. The
// system program is expected to be one of them.
func NewExecutor(store Store, configProvider ConfigProvider, programs ...Program) *Executor {
	conf := configProvider()

	e := &Executor{
		log:          logrus.StandardLogger().WithField("type", "ledger/executor"),
		conf:         conf,
		store:        store,
		programs:     make(map[string]Program),
		accountLocks: sync.NewStripedLock(uint(conf.stripedLockParallelization.Get(context.Background()))),
		signatures:   cache.NewCache(int(conf.signatureCacheSize.Get(context.Background()))),
	}

	for _, program := range programs {
		e.programs[string(program.ProgramID())] = program
	}

	return e
}

// Store is the account store the executor commits to.
func (e *Executor) Store() Store {
	return e.store
}

// Rent returns the currently configured rent parameters.
func (e *Executor) Rent(ctx context.Context) Rent {
	return Rent{
		LamportsPerByteYear: e.conf.lamportsPerByteYear.Get(ctx),
		ExemptionThreshold:  e.conf.exemptionThreshold.Get(ctx),
	}
}

// Slot is the slot of the most recently processed transaction.
func (e *Executor) Slot() uint64 {
	return e.slot.Load()
}

// Execute runs every instruction in tx and commits the resulting state. If any
// instruction fails, nothing is committed and the failure is reported in the
// result. The returned error is reserved for failures of the executor itself.
func (e *Executor) Execute(ctx context.Context, tx solana.Transaction) (*ExecutionResult, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Execute")
	defer tracer.End()

	start := time.Now()
	res, err := e.process(ctx, tx, true)
	metrics.RecordDuration(ctx, executeDurationMetricName, time.Since(start))
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

// Simulate runs tx against the current state without committing anything.
func (e *Executor) Simulate(ctx context.Context, tx solana.Transaction) (*ExecutionResult, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Simulate")
	defer tracer.End()

	res, err := e.process(ctx, tx, false)
	if err != nil {
		tracer.OnError(err)
	}
	return res, err
}

func (e *Executor) process(ctx context.Context, tx solana.Transaction, commit bool) (*ExecutionResult, error) {
	res := &ExecutionResult{}
	if len(tx.Signatures) > 0 {
		res.Signature = tx.Signatures[0]
	}

	log := e.log.WithFields(logrus.Fields{
		"method":    "process",
		"signature": base58.Encode(res.Signature[:]),
		"commit":    commit,
	})

	if err := tx.Verify(); err != nil {
		log.WithError(err).Debug("transaction failed signature verification")
		res.Err = solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
		return res, nil
	}

	instructions, txErr := e.sanitize(&tx.Message)
	if txErr != nil {
		res.Err = txErr
		return res, nil
	}

	var writable [][]byte
	for i, account := range tx.Message.Accounts {
		if tx.Message.IsWritable(i) {
			writable = append(writable, account)
		}
	}

	unlock := e.accountLocks.LockAll(writable...)
	defer unlock()

	signatureKey := string(res.Signature[:])
	if _, ok := e.signatures.Retrieve(signatureKey); ok {
		res.Err = solana.NewTransactionError(solana.TransactionErrorDuplicateSignature)
		return res, nil
	}

	loaded := make([]*Account, len(tx.Message.Accounts))
	for i, address := range tx.Message.Accounts {
		account, err := e.store.Get(ctx, address)
		if err == ErrAccountNotFound {
			account = NewAccount(address)
		} else if err != nil {
			log.WithError(err).Warn("failure loading account")
			return nil, errors.Wrapf(err, "error loading account %s", base58.Encode(address))
		}
		loaded[i] = account
	}

	if commit {
		res.Slot = e.slot.Add(1)
	} else {
		res.Slot = e.slot.Load()
	}

	ic := newInvokeContext(&tx.Message, loaded, e.Rent(ctx), time.Now(), res.Slot)
	for i, instruction := range instructions {
		if err := e.invoke(ctx, ic, instruction); err != nil {
			res.Logs = ic.logs

			instructionErr := toInstructionError(i, err)
			res.Err, err = solana.TransactionErrorFromInstructionError(instructionErr)
			if err != nil {
				return nil, err
			}

			log.WithError(instructionErr).WithField("instruction", i).Debug("transaction failed")
			e.recordEvent(ctx, res, commit)
			return res, nil
		}
	}
	res.Logs = ic.logs

	dirty := ic.dirty()
	for _, account := range dirty {
		if len(account.Data) > 0 && account.Lamports < ic.rent.MinimumBalance(len(account.Data)) {
			log.WithField("account", account.AddressString()).Debug("account left below rent exempt minimum")
			res.Err = solana.NewTransactionError(solana.TransactionErrorInsufficientFundsRent)
			e.recordEvent(ctx, res, commit)
			return res, nil
		}
	}

	if !commit {
		return res, nil
	}

	if len(dirty) > 0 {
		err := e.store.Commit(ctx, dirty...)
		switch err {
		case nil:
		case ErrStaleVersion, ErrAccountExists:
			log.WithError(err).Info("account modified outside of the executor")
			res.Err = solana.NewTransactionError(solana.TransactionErrorAccountInUse)
			return res, nil
		default:
			log.WithError(err).Warn("failure committing transaction")
			return nil, errors.Wrap(err, "error committing transaction")
		}
	}
	metrics.RecordCount(ctx, accountsCommittedMetricName, uint64(len(dirty)))

	if err := e.signatures.Insert(signatureKey, true, 1); err != nil {
		log.WithError(err).Warn("failure caching transaction signature")
	}

	e.recordEvent(ctx, res, commit)
	return res, nil
}

// sanitize validates the message structure and decompiles its instructions.
func (e *Executor) sanitize(m *solana.Message) ([]solana.Instruction, *solana.TransactionError) {
	seen := make(map[string]struct{})
	for _, account := range m.Accounts {
		if len(account) != ed25519.PublicKeySize {
			return nil, solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
		}
		if _, ok := seen[string(account)]; ok {
			return nil, solana.NewTransactionError(solana.TransactionErrorAccountLoadedTwice)
		}
		seen[string(account)] = struct{}{}
	}

	if len(m.Instructions) == 0 {
		return nil, solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}

	instructions := make([]solana.Instruction, len(m.Instructions))
	for i := range m.Instructions {
		instruction, err := m.DecompileInstruction(i)
		if err != nil {
			return nil, solana.NewTransactionError(solana.TransactionErrorInvalidAccountIndex)
		}

		if _, ok := e.programs[string(instruction.Program)]; !ok {
			return nil, solana.NewTransactionError(solana.TransactionErrorProgramAccountNotFound)
		}

		instructions[i] = instruction
	}

	return instructions, nil
}

func (e *Executor) invoke(ctx context.Context, ic *InvokeContext, instruction solana.Instruction) error {
	program := e.programs[string(instruction.Program)]

	before, ok := ic.totalLamports()
	if !ok {
		return ErrLamportOverflow
	}

	ic.program = program.ProgramID()
	ic.logInvoke(ic.program)
	err := program.Process(ctx, ic, instruction)
	ic.logResult(ic.program, err)
	if err != nil {
		return err
	}

	after, ok := ic.totalLamports()
	if !ok || after != before {
		return ErrUnbalancedInstruction
	}

	return nil
}

// Airdrop credits lamports to address outside of any transaction. It is only
// available when enabled by configuration.
func (e *Executor) Airdrop(ctx context.Context, address ed25519.PublicKey, lamports uint64) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Airdrop")
	defer tracer.End()

	var sig solana.Signature

	if !e.conf.enableAirdrops.Get(ctx) {
		return sig, ErrAirdropsDisabled
	}
	if lamports == 0 {
		return sig, errors.New("airdrop amount must be positive")
	}
	if lamports > e.conf.maxAirdropLamports.Get(ctx) {
		return sig, ErrAirdropLimitExceeded
	}
	if len(address) != ed25519.PublicKeySize {
		return sig, errors.New("invalid address")
	}

	unlock := e.accountLocks.LockAll(address)
	defer unlock()

	account, err := e.store.Get(ctx, address)
	if err == ErrAccountNotFound {
		account = NewAccount(address)
	} else if err != nil {
		tracer.OnError(err)
		return sig, err
	}

	if account.Lamports > math.MaxUint64-lamports {
		return sig, ErrLamportOverflow
	}
	account.Lamports += lamports

	if err := e.store.Commit(ctx, account); err != nil {
		tracer.OnError(err)
		return sig, err
	}

	if _, err := rand.Read(sig[:]); err != nil {
		return sig, err
	}
	e.slot.Add(1)

	e.log.WithFields(logrus.Fields{
		"method":   "Airdrop",
		"address":  base58.Encode(address),
		"lamports": lamports,
	}).Debug("airdropped lamports")

	return sig, nil
}

func (e *Executor) recordEvent(ctx context.Context, res *ExecutionResult, commit bool) {
	if !commit {
		return
	}

	kvPairs := map[string]interface{}{
		"signature": base58.Encode(res.Signature[:]),
		"slot":      res.Slot,
		"success":   res.Err == nil,
	}
	if res.Err != nil {
		kvPairs["error"] = res.Err.Error()
	}
	metrics.RecordEvent(ctx, transactionExecutedEventName, kvPairs)
}
