package rawdb

import (
	"encoding/binary"
	"encoding/json"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/tos-network/tosvault/common"
	"github.com/tos-network/tosvault/core/types"
	"github.com/tos-network/tosvault/params"
	"github.com/tos-network/tosvault/tosdb"
)

// ReadHeadSequence retrieves the sequence number of the last applied
// transaction, and whether any has been applied.
func ReadHeadSequence(db tosdb.KeyValueReader) (uint64, bool) {
	data, _ := db.Get(headSequenceKey)
	if len(data) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(data), true
}

// WriteHeadSequence stores the sequence number of the last applied transaction.
func WriteHeadSequence(db tosdb.KeyValueWriter, seq uint64) {
	if err := db.Put(headSequenceKey, encodeSequence(seq)); err != nil {
		log.Crit("Failed to store head sequence", "err", err)
	}
}

// ReadChainConfig retrieves the ledger config stored at genesis.
func ReadChainConfig(db tosdb.KeyValueReader) *params.ChainConfig {
	data, _ := db.Get(chainConfigKey)
	if len(data) == 0 {
		return nil
	}
	var config params.ChainConfig
	if err := json.Unmarshal(data, &config); err != nil {
		log.Error("Invalid chain config JSON", "err", err)
		return nil
	}
	return &config
}

// WriteChainConfig writes the ledger config stored at genesis.
func WriteChainConfig(db tosdb.KeyValueWriter, cfg *params.ChainConfig) {
	if cfg == nil {
		return
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		log.Crit("Failed to JSON encode chain config", "err", err)
	}
	if err := db.Put(chainConfigKey, data); err != nil {
		log.Crit("Failed to store chain config", "err", err)
	}
}

// ReadReceipt retrieves the receipt of the given transaction hash.
func ReadReceipt(db tosdb.KeyValueReader, hash common.Hash) *types.Receipt {
	data, _ := db.Get(receiptKey(hash))
	if len(data) == 0 {
		return nil
	}
	receipt := new(types.Receipt)
	if err := rlp.DecodeBytes(data, receipt); err != nil {
		log.Error("Invalid receipt RLP", "hash", hash, "err", err)
		return nil
	}
	return receipt
}

// WriteReceipt stores a receipt and indexes its transaction by sequence.
func WriteReceipt(db tosdb.KeyValueWriter, receipt *types.Receipt) {
	data, err := rlp.EncodeToBytes(receipt)
	if err != nil {
		log.Crit("Failed to RLP encode receipt", "err", err)
	}
	if err := db.Put(receiptKey(receipt.TxHash), data); err != nil {
		log.Crit("Failed to store receipt", "err", err)
	}
	if err := db.Put(txSequenceKey(receipt.Sequence), receipt.TxHash.Bytes()); err != nil {
		log.Crit("Failed to store transaction sequence index", "err", err)
	}
}

// ReadTxHashBySequence retrieves the hash of the transaction applied at seq.
func ReadTxHashBySequence(db tosdb.KeyValueReader, seq uint64) (common.Hash, bool) {
	data, _ := db.Get(txSequenceKey(seq))
	if len(data) != common.HashLength {
		return common.Hash{}, false
	}
	return common.BytesToHash(data), true
}
