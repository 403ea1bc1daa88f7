package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/animesao/clan-bot/internal/store"
)

type ClanController struct {
	store *store.Store
}

func NewClanController(st *store.Store) *ClanController {
	return &ClanController{
		store: st,
	}
}

func (cc *ClanController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, cc.store.Stats())
}

func (cc *ClanController) GetSubclans(c *gin.Context) {
	type subclanSummary struct {
		Name       string `json:"name"`
		Creator    string `json:"creator"`
		Members    int    `json:"members"`
		MaxMembers int    `json:"max_members"`
	}

	var out []subclanSummary
	cc.store.View(func(st *store.State) {
		for name, sc := range st.Subclans {
			out = append(out, subclanSummary{
				Name:       name,
				Creator:    sc.CreatedBy,
				Members:    len(sc.Members),
				MaxMembers: sc.MaxMembers,
			})
		}
	})

	if out == nil {
		out = []subclanSummary{}
	}
	c.JSON(http.StatusOK, out)
}
